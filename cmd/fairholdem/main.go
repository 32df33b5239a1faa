package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/fairholdem/internal/config"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Config   string           `short:"c" default:"fairholdem.hcl" help:"Path to HCL configuration file"`
	LogLevel string           `short:"l" help:"Log level (overrides config)"`

	Commit   CommitCmd   `cmd:"" help:"Generate a server secret and its commitment"`
	Shuffle  ShuffleCmd  `cmd:"" help:"Derive the deck for a secret, client seed and nonce"`
	Verify   VerifyCmd   `cmd:"" help:"Verify a revealed hand"`
	Simulate SimulateCmd `cmd:"" help:"Play hands between random bots on every configured table"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("fairholdem"),
		kong.Description("Provably fair Texas Hold'em tables"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

// load reads the config file and applies command line overrides.
func (cli *CLI) load() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
	}), nil
}
