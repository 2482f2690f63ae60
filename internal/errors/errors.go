package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeGit           ErrorType = "GIT"
	TypePatch         ErrorType = "PATCH"
	TypeStamp         ErrorType = "STAMP"
	TypePackage       ErrorType = "PACKAGE"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if stderr, ok := e.Context["stderr"].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same sentinel, so copies made with
// WithError/WithContext still match errors.Is(err, ErrX).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Configuration errors. None of these are raised after the pipeline has
// touched the project directory.
var (
	ErrWorkspaceMissing = NewAppError(TypeConfiguration, "Workspace root is not defined", nil).
				WithSuggestion("Set GITHUB_WORKSPACE or pass --workspace <dir>")

	ErrWorkspaceNotFound = NewAppError(TypeConfiguration, "Workspace root does not exist", nil).
				WithSuggestion("Check the checkout step ran before this one")

	ErrProjectDirMissing = NewAppError(TypeConfiguration, "Project directory is not defined", nil).
				WithSuggestion("Set the project_dir input or pass --project-dir <dir>")

	ErrProjectDirNotFound = NewAppError(TypeConfiguration, "Project directory does not exist", nil).
				WithSuggestion("project_dir is relative to the workspace root, check the path")

	ErrProjectTypeMissing = NewAppError(TypeConfiguration, "Project type is not defined", nil).
				WithSuggestion("Use one of: core-package, module-package, extension-package")

	ErrUnrecognizedProjectType = NewAppError(TypeConfiguration, "Non-recognized project type", nil).
					WithSuggestion("Use one of: core-package, module-package, extension-package")

	ErrBaseVersionMissing = NewAppError(TypeConfiguration, "Base version is not defined", nil).
				WithSuggestion("Set the base_version input, e.g. 5.60")

	ErrRevisionMissing = NewAppError(TypeConfiguration, "Could not determine the current revision", nil).
				WithSuggestion("Set GITHUB_SHA or pass --revision <sha>")

	ErrConfigFile = NewAppError(TypeConfiguration, "Failed to read configuration file", nil).
			WithSuggestion("Check the file exists and is valid TOML")
)

// Diff generation errors
var (
	ErrDiffGeneration = NewAppError(TypeGit, "Failed to generate patch diff", nil).
				WithSuggestion("Make sure git is installed and the checkout has full history: fetch-depth: 0")

	ErrPatchBranchNotFound = NewAppError(TypeGit, "Patches branch not found on origin", nil).
				WithSuggestion("Fetch the remote branch first: git fetch origin <base_version>-patches")

	ErrWritePatchFile = NewAppError(TypeGit, "Failed to write patch file", nil).
				WithSuggestion("Check the project directory is writable")

	ErrOpenRepository = NewAppError(TypeGit, "Failed to open git repository", nil)

	ErrExtractRepoInfo = NewAppError(TypeGit, "Failed to extract repository info", nil)
)

// Patch apply errors
var (
	ErrPatchApply = NewAppError(TypePatch, "Patch does not apply cleanly", nil).
			WithSuggestion("Rebase the patches branch onto the current base version")

	ErrPatchCleanup = NewAppError(TypePatch, "Failed to remove patch file", nil)
)

// Stamping errors
var (
	ErrStamp = NewAppError(TypeStamp, "Failed to stamp patch version", nil)

	ErrStampListDir = NewAppError(TypeStamp, "Failed to list project directory", nil).
			WithSuggestion("Check the project directory is readable")
)

// Packaging errors
var (
	ErrPackaging = NewAppError(TypePackage, "Failed to create package", nil).
			WithSuggestion("Check disk space and permissions on the workspace root")

	ErrPackageName = NewAppError(TypePackage, "Package name cannot be empty", nil)
)
