// Package cli implements subcommand routing for the promptfan binary.
package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Command represents a CLI subcommand.
type Command struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args []string) error
}

// Router dispatches subcommands.
type Router struct {
	commands map[string]*Command
	fallback string
}

// NewRouter creates a new CLI router.
func NewRouter() *Router {
	return &Router{
		commands: make(map[string]*Command),
	}
}

// Register adds a command to the router.
func (r *Router) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
}

// SetDefault names the command used when args are empty or start with a
// flag.
func (r *Router) SetDefault(name string) {
	r.fallback = name
}

// Dispatch routes to the correct command or returns an error.
func (r *Router) Dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		if r.fallback == "" {
			return fmt.Errorf("no command specified")
		}
		return r.commands[r.fallback].Run(ctx, args)
	}

	name := args[0]
	cmd, ok := r.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}

	return cmd.Run(ctx, args[1:])
}

// HasCommand checks if a command is registered.
func (r *Router) HasCommand(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// ListCommands returns all registered commands sorted by name.
func (r *Router) ListCommands() []Command {
	var cmds []Command
	for _, cmd := range r.commands {
		cmds = append(cmds, *cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Usage returns usage text for all commands.
func (r *Router) Usage() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, cmd := range r.ListCommands() {
		fmt.Fprintf(&b, "  %-12s %s\n", cmd.Name, cmd.Description)
	}
	return b.String()
}

// SplitList splits a comma-separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
