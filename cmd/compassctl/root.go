package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dgnsrekt/compass_chart/internal/board"
	"github.com/dgnsrekt/compass_chart/internal/config"
	"github.com/dgnsrekt/compass_chart/internal/controller"
	"github.com/dgnsrekt/compass_chart/internal/port"
	"github.com/dgnsrekt/compass_chart/internal/session"
	"github.com/dgnsrekt/compass_chart/internal/storage"
	"github.com/spf13/cobra"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	backend   string
	dir       string
	dbPath    string
	keyLayout string
	chart     string
	asJSON    bool
	verbose   bool

	store *storage.Backend
	svc   *controller.Service
	term  *port.Terminal
}

func newApp(in io.Reader, out io.Writer) *app {
	return &app{in: in, out: out, errOut: os.Stderr}
}

// execute runs the command line and closes the storage backend whether or not
// the command succeeded. cobra skips post-run hooks after an error, so the
// close cannot live in PersistentPostRunE. A nil args uses os.Args.
func (a *app) execute(args []string) error {
	cmd := a.rootCmd()
	if args != nil {
		cmd.SetArgs(args)
	}
	err := cmd.Execute()
	if cerr := a.close(); cerr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "close storage: %v\n", cerr)
		if err == nil {
			err = cerr
		}
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "compassctl",
		Short: "Manage political compass charts and their points",
		Long: `compassctl reads and edits charts in the same store the compass server
uses. Each command restores the last loaded chart first; --chart switches to
another chart before the command runs.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.backend, "backend", "", "Storage backend: memory, file, sqlite, browser (default: STORAGE_BACKEND)")
	flags.StringVar(&a.dir, "dir", "", "Directory of the file backend (default: STORAGE_DIR)")
	flags.StringVar(&a.dbPath, "db", "", "Database path of the sqlite backend (default: STORAGE_SQLITE_PATH)")
	flags.StringVar(&a.keyLayout, "key-layout", "", "Key layout: standard or legacy (default: STORAGE_KEY_LAYOUT)")
	flags.StringVar(&a.chart, "chart", "", "Chart to load before running the command")
	flags.BoolVar(&a.asJSON, "json", false, "Print JSON instead of text")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(newChartsCmd(a), newPointsCmd(a), newTransformCmd(a))
	return rootCmd
}

func (a *app) open(cmd *cobra.Command, args []string) (err error) {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.StorageBackend = strings.ToLower(a.backend)
	}
	if a.dir != "" {
		cfg.StorageDir = a.dir
	}
	if a.dbPath != "" {
		cfg.SQLitePath = a.dbPath
	}
	if a.keyLayout != "" {
		cfg.KeyLayout = strings.ToLower(a.keyLayout)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	a.store, err = storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if cerr := a.close(); cerr != nil {
				slog.Warn("storage close failed", "error", cerr)
			}
		}
	}()
	a.svc = controller.NewService(board.New(session.NewManager(a.store.Store, a.store.Keys)), nil)
	a.term = port.NewTerminal(a.in, a.out)

	if _, err := a.svc.Restore(ctx); err != nil {
		return err
	}
	if a.chart != "" {
		if _, err := a.svc.LoadChart(ctx, a.chart); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *app) requireLoaded(ctx context.Context) (board.State, error) {
	st := a.svc.State(ctx)
	if !st.ChartLoaded {
		return st, fmt.Errorf("no chart loaded; create one with 'compassctl charts create'")
	}
	return st, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
