// Command mailtm drives a mail.tm account from the shell. Results are
// printed to stdout as JSON; errors go to stderr with exit status 1.
//
// Usage:
//
//	mailtm <command> [args]
//
// Credentials are read from MAILTM_ADDRESS, MAILTM_PASSWORD and
// MAILTM_TOKEN (or a .env file). Commands that need a token obtain one
// from the address and password when MAILTM_TOKEN is unset.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mailtm/client-go"
	"github.com/mailtm/client-go/internal/config"
	"github.com/mailtm/client-go/internal/logger"
)

var errNoCredentials = errors.New("no token configured: set MAILTM_TOKEN or MAILTM_ADDRESS and MAILTM_PASSWORD")

// Config holds the I/O streams of a run.
type Config struct {
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config using the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// session is the state shared by commands during one run.
type session struct {
	client   *mailtm.Client
	settings *config.Config
	log      *zap.Logger
}

// token returns the configured bearer token, logging in first when only
// an address and password are configured.
func (s *session) token(ctx context.Context) (string, error) {
	if s.settings.Token != "" {
		return s.settings.Token, nil
	}
	if !s.settings.HasCredentials() {
		return "", errNoCredentials
	}
	s.log.Debug("requesting token", zap.String("address", s.settings.Address))
	tok, err := s.client.GetToken(ctx, s.settings.Address, s.settings.Password)
	if err != nil {
		return "", err
	}
	return tok.Token, nil
}

type command struct {
	usage string
	// nargs is the number of required arguments; optional ones follow.
	nargs int
	run   func(ctx context.Context, s *session, args []string) (any, error)
}

var commands = map[string]command{
	"domains":        {"domains [page]", 0, runDomains},
	"domain":         {"domain <id>", 1, runDomain},
	"create":         {"create [address]", 0, runCreate},
	"token":          {"token", 0, runToken},
	"me":             {"me", 0, runMe},
	"account":        {"account <id>", 1, runAccount},
	"delete-account": {"delete-account <id>", 1, runDeleteAccount},
	"messages":       {"messages [page]", 0, runMessages},
	"message":        {"message <id>", 1, runMessage},
	"read":           {"read <id>", 1, runRead},
	"delete-message": {"delete-message <id>", 1, runDeleteMessage},
	"source":         {"source <id>", 1, runSource},
	"parse":          {"parse <id>", 1, runParse},
	"password":       {"password [length]", 0, runPassword},
}

func usage() string {
	lines := make([]string, 0, len(commands))
	for _, c := range commands {
		lines = append(lines, "  mailtm "+c.usage)
	}
	sort.Strings(lines)
	return "usage:\n" + strings.Join(lines, "\n")
}

func run(ctx context.Context, args []string, cfg *Config, settings *config.Config) error {
	if len(args) < 2 {
		return errors.New(usage())
	}
	cmd, ok := commands[args[1]]
	if !ok {
		return fmt.Errorf("unknown command: %s\n%s", args[1], usage())
	}
	rest := args[2:]
	if len(rest) < cmd.nargs {
		return fmt.Errorf("usage: mailtm %s", cmd.usage)
	}

	log, err := logger.New(logger.Config{
		Level:       settings.Log.Level,
		Development: settings.Log.Development,
		File:        settings.Log.File,
		MaxSize:     settings.Log.MaxSize,
		MaxBackups:  settings.Log.MaxBackups,
		MaxAge:      settings.Log.MaxAge,
		Compress:    settings.Log.Compress,
	}, cfg.Stderr)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	client, err := mailtm.New(
		mailtm.WithBaseURL(settings.BaseURL),
		mailtm.WithTimeout(settings.Timeout),
		mailtm.WithUserAgent(settings.UserAgent),
		mailtm.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	out, err := cmd.run(ctx, &session{client: client, settings: settings, log: log}, rest)
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}

	enc := json.NewEncoder(cfg.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// pageArg returns the optional page argument, defaulting to 1.
func pageArg(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	page, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid page %q", args[0])
	}
	return page, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
