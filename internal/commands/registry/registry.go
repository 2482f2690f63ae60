package registry

import (
	domainErrors "github.com/thomas-vilte/patchrelease/internal/errors"
	"github.com/urfave/cli/v3"
)

type CommandFactory interface {
	CreateCommand() *cli.Command
}

// Registry collects command factories and builds them in registration order.
type Registry struct {
	names     []string
	factories map[string]CommandFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]CommandFactory),
	}
}

func (r *Registry) Register(name string, factory CommandFactory) error {
	if _, exists := r.factories[name]; exists {
		return domainErrors.NewAppError(domainErrors.TypeInternal, "Command already registered", nil).
			WithContext("command", name)
	}
	r.names = append(r.names, name)
	r.factories[name] = factory
	return nil
}

func (r *Registry) CreateCommands() []*cli.Command {
	commands := make([]*cli.Command, 0, len(r.names))
	for _, name := range r.names {
		commands = append(commands, r.factories[name].CreateCommand())
	}
	return commands
}
