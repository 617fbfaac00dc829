package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leandrotocalini/promptfan/internal/agents"
	"github.com/leandrotocalini/promptfan/internal/cli"
	"github.com/leandrotocalini/promptfan/internal/config"
	"github.com/leandrotocalini/promptfan/internal/dispatch"
	"github.com/leandrotocalini/promptfan/internal/lifecycle"
	"github.com/leandrotocalini/promptfan/internal/provider/completions"
	"github.com/leandrotocalini/promptfan/internal/report"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

var errAllFailed = errors.New("every agent failed")

func main() {
	boot := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := config.LoadDotEnv(".env"); err != nil {
		boot.Warn("failed to load .env", "error", err)
	}

	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	router := a.router()

	m := lifecycle.NewManager(lifecycle.DefaultShutdownConfig(), boot)
	os.Exit(m.Run(func(ctx context.Context) error {
		return router.Dispatch(ctx, os.Args[1:])
	}))
}

type app struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer

	// newCompleter is swapped in tests.
	newCompleter func(cfg *config.Config, logger *slog.Logger) dispatch.Completer
}

type runFlags struct {
	config string
	agents string
	only   string
	format string
	color  string
}

func (a *app) router() *cli.Router {
	r := cli.NewRouter()
	r.Register(&cli.Command{Name: "run", Description: "Send every agent's prompt in parallel and print the answers", Run: a.run})
	r.Register(&cli.Command{Name: "agents", Description: "List the resolved agents", Run: a.listAgents})
	r.Register(&cli.Command{Name: "validate", Description: "Check config and agents without sending requests", Run: a.validate})
	r.Register(&cli.Command{Name: "version", Description: "Print the version", Run: func(ctx context.Context, args []string) error {
		fmt.Fprintf(a.stdout, "promptfan %s\n", version)
		return nil
	}})
	r.Register(&cli.Command{Name: "help", Description: "Show this help, or one command's description", Run: func(ctx context.Context, args []string) error {
		return a.help(r, args)
	}})
	r.SetDefault("run")
	return r
}

func (a *app) help(r *cli.Router, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.stdout, "usage: promptfan [command] [flags]\n\n%s", r.Usage())
		return nil
	}

	name := args[0]
	if !r.HasCommand(name) {
		return fmt.Errorf("unknown command %q", name)
	}
	for _, cmd := range r.ListCommands() {
		if cmd.Name == name {
			fmt.Fprintf(a.stdout, "promptfan %s: %s\n", cmd.Name, cmd.Description)
		}
	}
	return nil
}

func (a *app) parseFlags(name string, args []string) (*runFlags, error) {
	f := &runFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&f.config, "config", "", "config file (default $PROMPTFAN_CONFIG or ./"+config.DefaultConfigFile+")")
	fs.StringVar(&f.agents, "agents", "", "agents YAML file (default: built-in agents)")
	fs.StringVar(&f.only, "only", "", "comma-separated agent names to run")
	fs.StringVar(&f.format, "format", "", "output format: text or json")
	fs.StringVar(&f.color, "color", "", "color mode: auto, always, never")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return f, nil
}

// load resolves config with flag overrides, then the agent list.
func (a *app) load(f *runFlags) (*config.Config, []dispatch.PromptAgent, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, nil, err
	}
	if f.agents != "" {
		cfg.AgentsFile = f.agents
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.color != "" {
		cfg.Output.Color = f.color
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	list := agents.Builtin()
	if cfg.AgentsFile != "" {
		list, err = agents.Load(cfg.AgentsFile)
		if err != nil {
			return nil, nil, err
		}
	}
	if names := cli.SplitList(f.only); len(names) > 0 {
		list, err = agents.Select(list, names)
		if err != nil {
			return nil, nil, err
		}
	}
	return cfg, list, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	f, err := a.parseFlags("run", args)
	if err != nil {
		return ignoreHelp(err)
	}
	cfg, list, err := a.load(f)
	if err != nil {
		return err
	}

	if cfg.APICredential == "" && a.stdin != nil && config.IsTerminal(a.stdin) {
		key, err := config.PromptCredential(a.stdin, a.stderr)
		if err != nil {
			return err
		}
		cfg.APICredential = key
	}
	if err := cfg.RequireCredential(); err != nil {
		return err
	}

	logger := config.NewLogger(cfg.Log, a.stderr)
	color := colorFor(cfg.Output.Color, a.stdout)

	opts := []dispatch.Option{
		dispatch.WithMaxTokens(cfg.MaxTokens),
		dispatch.WithConcurrency(cfg.Concurrency),
		dispatch.WithLogger(logger),
	}
	if cfg.Output.Format == "text" {
		opts = append(opts, dispatch.WithObserver(report.Progress(a.stderr, colorFor(cfg.Output.Color, a.stderr))))
	}

	newCompleter := a.newCompleter
	if newCompleter == nil {
		newCompleter = defaultCompleter
	}
	d := dispatch.New(newCompleter(cfg, logger), cfg.ModelID, opts...)

	results := d.RunAll(ctx, list)

	switch cfg.Output.Format {
	case "json":
		err = report.JSON(a.stdout, results)
	default:
		err = report.Text(a.stdout, results, color)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if s := results.Summary(); s.Succeeded == 0 && s.Failed > 0 {
		return errAllFailed
	}
	return nil
}

func (a *app) listAgents(ctx context.Context, args []string) error {
	f, err := a.parseFlags("agents", args)
	if err != nil {
		return ignoreHelp(err)
	}
	_, list, err := a.load(f)
	if err != nil {
		return err
	}

	for _, ag := range list {
		fmt.Fprintf(a.stdout, "%-24s temperature=%g top_p=%g top_k=%d messages=%d\n",
			ag.Name, ag.Temperature, ag.TopP, ag.TopK, len(ag.Messages))
		for _, m := range ag.Messages {
			fmt.Fprintf(a.stdout, "  %-9s %s\n", m.Role+":", firstLine(m.Content))
		}
	}
	return nil
}

func (a *app) validate(ctx context.Context, args []string) error {
	f, err := a.parseFlags("validate", args)
	if err != nil {
		return ignoreHelp(err)
	}
	cfg, list, err := a.load(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "config ok: model %s at %s\n", cfg.ModelID, cfg.EndpointURL)
	fmt.Fprintf(a.stdout, "%d agent(s) valid\n", len(list))
	return nil
}

func defaultCompleter(cfg *config.Config, logger *slog.Logger) dispatch.Completer {
	return completions.NewClient(cfg.EndpointURL, cfg.APICredential, completions.WithLogger(logger))
}

func colorFor(mode string, w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return report.ColorEnabled(mode, f)
	}
	return mode == "always"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func ignoreHelp(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}
