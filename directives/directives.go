// Package directives implements the status configuration directives:
//
//	status;                        location: serve the status report here
//	status_format <fmt> [<arg>];   main, server, location: accepted, no effect
//	status_zone <name> [<arg>];    server: accepted, no effect
//
// A directive is applied to a Location in a given block context. Applying checks
// that the directive is allowed in that context and receives the right number of
// arguments before running its setter.
package directives

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Context is a set of configuration blocks
type Context uint

const (
	MainConf Context = 1 << iota
	SrvConf
	LocConf
)

func (c Context) String() string {
	var names []string
	if c&MainConf != 0 {
		names = append(names, "main")
	}
	if c&SrvConf != 0 {
		names = append(names, "server")
	}
	if c&LocConf != 0 {
		names = append(names, "location")
	}
	return strings.Join(names, "|")
}

// Arity is the number of arguments a directive accepts
type Arity int

const (
	NoArgs Arity = iota
	Take12
)

func (a Arity) accepts(n int) bool {
	switch a {
	case NoArgs:
		return n == 0
	case Take12:
		return n == 1 || n == 2
	}
	return false
}

var (
	ErrUnknownDirective = errors.New("unknown directive")
	ErrInvalidArgs      = errors.New("invalid number of arguments")
	ErrNotAllowedHere   = errors.New("directive is not allowed here")
)

// Location is a routing unit the status directives are applied to
type Location struct {
	Path    string
	Handler http.Handler
}

// Command describes one directive
type Command struct {
	Name     string
	Contexts Context
	Arity    Arity
	Set      func(loc *Location, args []string) error
}

// Module holds the directive table and the handler the status directive installs
type Module struct {
	handler  http.Handler
	commands map[string]Command
}

// NewModule creates the directive table. The status directive installs handler.
func NewModule(handler http.Handler) *Module {
	m := &Module{
		handler:  handler,
		commands: make(map[string]Command),
	}

	for _, cmd := range []Command{
		{
			Name:     "status",
			Contexts: LocConf,
			Arity:    NoArgs,
			Set:      m.setStatus,
		},
		{
			Name:     "status_format",
			Contexts: MainConf | SrvConf | LocConf,
			Arity:    Take12,
			Set:      setStatusFormat,
		},
		{
			Name:     "status_zone",
			Contexts: SrvConf,
			Arity:    Take12,
			Set:      setStatusZone,
		},
	} {
		m.commands[cmd.Name] = cmd
	}

	return m
}

// Commands returns the directive names the module understands
func (m *Module) Commands() []string {
	return []string{"status", "status_format", "status_zone"}
}

// Apply runs directive name with args against loc as if it appeared in block
func (m *Module) Apply(block Context, loc *Location, name string, args ...string) error {
	cmd, ok := m.commands[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownDirective, name)
	}

	if cmd.Contexts&block == 0 {
		return fmt.Errorf("%q %w in %s block, allowed in: %s", name, ErrNotAllowedHere, block, cmd.Contexts)
	}

	if !cmd.Arity.accepts(len(args)) {
		return fmt.Errorf("%w in %q directive: got %d", ErrInvalidArgs, name, len(args))
	}

	if err := cmd.Set(loc, args); err != nil {
		return fmt.Errorf("%q directive: %w", name, err)
	}

	return nil
}

// setStatus installs the status handler for the location
func (m *Module) setStatus(loc *Location, _ []string) error {
	if loc == nil {
		return errors.New("no location to attach to")
	}
	loc.Handler = m.handler
	return nil
}

// setStatusFormat accepts status_format and ignores it; the report format is fixed.
func setStatusFormat(_ *Location, _ []string) error {
	return nil
}

// setStatusZone accepts status_zone and ignores it; no zone is created.
func setStatusZone(_ *Location, _ []string) error {
	return nil
}
