// Package report publishes the outputs of a run: the GitHub Actions output
// file and a human or machine readable summary on stdout.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/thomas-vilte/patchrelease/internal/models"
	"gopkg.in/yaml.v3"
)

// Format selects how the summary is printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", domainErrors.NewAppError(domainErrors.TypeConfiguration, "Unknown output format", nil).
			WithContext("format", value).
			WithSuggestion("Use one of: text, json, yaml")
	}
}

// Outputs returns the key/value pairs published to the workflow.
func Outputs(result *models.Result) [][2]string {
	return [][2]string{
		{"version", result.Version},
		{"package", result.Package},
		{"package_path", result.PackagePath},
	}
}

// WriteOutputFile appends the outputs to path in key=value form, the format
// GitHub Actions reads from $GITHUB_OUTPUT.
func WriteOutputFile(path string, result *models.Result) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return domainErrors.NewAppError(domainErrors.TypeInternal, "Failed to open output file", err).
			WithContext("path", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = domainErrors.NewAppError(domainErrors.TypeInternal, "Failed to write output file", cerr).
				WithContext("path", path)
		}
	}()

	for _, kv := range Outputs(result) {
		if _, err := fmt.Fprintf(f, "%s=%s\n", kv[0], kv[1]); err != nil {
			return domainErrors.NewAppError(domainErrors.TypeInternal, "Failed to write output file", err).
				WithContext("path", path)
		}
	}
	return nil
}

// Print writes the summary to w.
func Print(w io.Writer, format Format, result *models.Result) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		label := color.New(color.FgHiBlack)
		value := color.New(color.FgGreen, color.Bold)
		for _, kv := range Outputs(result) {
			if _, err := fmt.Fprintf(w, "%s %s\n", label.Sprintf("%-13s", kv[0]+":"), value.Sprint(kv[1])); err != nil {
				return err
			}
		}
		return nil
	}
}
