package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeladder/internal/devserver"
	"codeladder/internal/logging"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	defaultAddr := os.Getenv("ADDR")
	if defaultAddr == "" {
		defaultAddr = ":8081"
	}

	var (
		addr     string
		seedPath string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:           "ladder-devserver",
		Short:         "Run an in-memory code ladder backend for local development",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), addr, seedPath, verbose)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "HTTP listen address")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file (built-in sample data when empty)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func run(ctx context.Context, addr, seedPath string, verbose bool) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	logger, err := logging.NewServer(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	seed := devserver.DefaultSeed()
	if seedPath != "" {
		if seed, err = devserver.LoadSeed(seedPath); err != nil {
			return err
		}
	}
	store, err := devserver.NewStore(seed)
	if err != nil {
		return err
	}

	key := os.Getenv("DEVSERVER_JWT_KEY")
	if key == "" {
		key = uuid.NewString()
		logger.Info("DEVSERVER_JWT_KEY not set; tokens are valid for this run only")
	}
	issuer := devserver.NewIssuer([]byte(key))

	issued := make(map[string]bool)
	for _, l := range seed.Ladders {
		for _, user := range l.Users {
			if issued[user] {
				continue
			}
			issued[user] = true
			token, err := issuer.Issue(user)
			if err != nil {
				return err
			}
			logger.Info("seeded user token", zap.String("username", user), zap.String("token", token))
		}
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           devserver.NewRouter(devserver.NewAPI(store, issuer, logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ladder-devserver listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
