// ABOUTME: Root command and shared wiring for the notes CLI.
// ABOUTME: Builds config, logging, token store, state, session and synchronizer before each command.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/harper/notes/internal/api"
	"github.com/harper/notes/internal/config"
	"github.com/harper/notes/internal/logging"
	"github.com/harper/notes/internal/session"
	"github.com/harper/notes/internal/state"
	notesync "github.com/harper/notes/internal/sync"
	"github.com/harper/notes/internal/tokenstore"
	"github.com/harper/notes/internal/ui"
	"github.com/spf13/cobra"
)

const (
	// skipSetup marks commands that must work without a token store.
	skipSetup = "skip-setup"
	// logToFile marks commands that own the terminal; their logs go to
	// notes.log in the data dir instead of stderr.
	logToFile = "log-to-file"

	logFileName = "notes.log"
)

var (
	cfg     *config.Config
	logger  *slog.Logger
	store   tokenstore.Store
	st      *state.State
	sessMgr *session.Manager
	syncer  *notesync.Synchronizer
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "Notes client for a remote notes service",
	Long: `notes keeps a session with a remote notes API and lets you list, create,
edit and delete your notes from the command line, a terminal UI, or an MCP agent.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if needsSetup(cmd) {
			return setup(cmd)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the CLI and prints any error.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	_ = teardown()
	return err
}

// needsSetup reports whether cmd or any ancestor requires the session stack.
func needsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipSetup] == "true" {
			return false
		}
		switch c.Name() {
		case "help", "completion":
			return false
		}
	}
	return true
}

func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.APIURL = u
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, closer, err := logOutput(cmd)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = closer
	logger = logging.Init(out, cfg.LogLevel, cfg.LogFormat)

	store, err = tokenstore.Open(cfg.TokenStore.Backend, cfg.TokenStorePath())
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}

	client, err := api.NewClient(cfg.APIURL,
		api.WithPathPrefix(cfg.PathPrefix),
		api.WithTimeout(cfg.Timeout),
		api.WithTokenSource(tokenstore.Source{Store: store}),
		api.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	st = state.New()
	sessMgr = session.NewManager(st, client, store, logger)
	if _, err := sessMgr.Init(); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	syncer = notesync.New(st, client, sessMgr, logger)

	logger.Debug("ready", "api", cfg.APIURL, "store", cfg.TokenStore.Backend)
	return nil
}

// logOutput returns where cmd's logs go. The closer is nil for stderr.
func logOutput(cmd *cobra.Command) (io.Writer, io.Closer, error) {
	if cmd.Annotations[logToFile] != "true" {
		return os.Stderr, nil, nil
	}
	if err := os.MkdirAll(config.DataDir(), 0750); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(config.DataDir(), logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func teardown() error {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}

// requireLogin fails fast when no session is held.
func requireLogin() error {
	if !sessMgr.IsAuthenticated() {
		return errors.New("not logged in - run 'notes login' first")
	}
	return nil
}

// failure converts an operation error into the message the user sees.
// The full cause is logged at debug level.
func failure(err error) error {
	if err == nil {
		return nil
	}
	logger.Debug("operation failed", "error", err)
	if notice := st.Notice(); notice != "" && !sessMgr.IsAuthenticated() {
		return errors.New(notice)
	}
	if msg := st.Error(); msg != "" {
		return errors.New(msg)
	}
	return err
}

// loadNotes fetches the collection so IDs can be resolved.
func loadNotes(ctx context.Context) error {
	if err := requireLogin(); err != nil {
		return err
	}
	if _, err := syncer.LoadAll(ctx); err != nil {
		return failure(err)
	}
	return nil
}
