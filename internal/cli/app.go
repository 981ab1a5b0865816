// Package cli is the ladder command-line client: a cobra command tree over
// the backend services plus an interactive problemset shell.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeladder/internal/api"
	"codeladder/internal/config"
	"codeladder/internal/logging"
	"codeladder/internal/session"
	"codeladder/internal/session/sqlite"
)

const authAnnotation = "codeladder/auth"

type StoreOpener func(path string) (session.Store, error)

func openSQLiteStore(path string) (session.Store, error) {
	return sqlite.NewStore(path)
}

type App struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	verbose    bool
	noColor    bool

	cfg        config.Config
	logger     *zap.Logger
	store      session.Store
	session    session.Session
	client     *api.Client
	httpClient *http.Client
	styles     Styles

	openStore StoreOpener
}

type Option func(*App)

func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

func WithStoreOpener(open StoreOpener) Option {
	return func(a *App) {
		if open != nil {
			a.openStore = open
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(a *App) {
		a.httpClient = client
	}
}

func NewApp(opts ...Option) *App {
	app := &App{
		in:         eofReader{},
		out:        io.Discard,
		errOut:     io.Discard,
		configPath: config.DefaultPath(),
		logger:     zap.NewNop(),
		openStore:  openSQLiteStore,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Execute runs the command line in args and releases the session store.
func Execute(ctx context.Context, args []string, opts ...Option) error {
	app := NewApp(opts...)
	defer app.close()

	root := app.Command()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "ladder",
		Short: "Track competitive programming ladders from the terminal",
		Long: `ladder is a terminal client for code ladder: browse the problem set,
work through shared ladders, keep a revision list and review your
contribution calendar.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", a.configPath, "config file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log backend calls to stderr")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colour output")

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.problemsCommand(),
		a.ladderCommand(),
		a.revisionCommand(),
		a.importCommand(),
		a.calendarCommand(),
		a.catalogCommand(),
		a.shellCommand(),
	)
	return root
}

// requireAuth marks cmd as needing a valid session; the guard runs once in
// setup before the command body.
func requireAuth(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations[authAnnotation] = "true"
	return cmd
}

func needsAuth(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[authAnnotation] == "true" {
			return true
		}
	}
	return false
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Verbose = true
	}
	if a.noColor {
		cfg.UI.NoColor = true
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Logging.Verbose)
	if err != nil {
		return err
	}
	a.logger = logger

	if a.httpClient == nil {
		timeout, err := cfg.HTTPTimeout()
		if err != nil {
			return err
		}
		a.httpClient = &http.Client{Timeout: timeout}
	}

	store, err := a.openStore(cfg.Session.DBPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	a.store = store

	current, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if cfg.Session.Username != "" && cfg.Session.Token != "" {
		current = session.New(cfg.Session.Username, cfg.Session.Token)
	}
	a.useSession(current)

	a.styles = NewStyles(a.out, cfg.UI.NoColor)
	a.logger.Debug("cli ready",
		zap.String("command", cmd.CommandPath()),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("authenticated", current.IsAuthenticated()))

	if needsAuth(cmd) {
		return session.Guard(current)
	}
	return nil
}

func (a *App) useSession(current session.Session) {
	a.session = current
	a.client = api.NewClient(a.cfg.BaseURL, current,
		api.WithHTTPClient(a.httpClient),
		api.WithLogger(a.logger))
}

func (a *App) close() {
	if closer, ok := a.store.(io.Closer); ok {
		_ = closer.Close()
	}
	_ = a.logger.Sync()
}

func (a *App) questionCache() api.QuestionGetter {
	cache, err := api.NewQuestionCache(a.client, 0)
	if err != nil {
		return a.client
	}
	return cache
}

// Describe turns client errors into the message shown to the user.
func Describe(err error) string {
	switch {
	case errors.Is(err, api.ErrServiceUnavailable):
		return "ladder service unavailable: " + err.Error()
	case errors.Is(err, api.ErrUnauthorized):
		return "session rejected by the backend; run `ladder login` again"
	default:
		return err.Error()
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
