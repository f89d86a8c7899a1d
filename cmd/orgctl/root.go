package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/org-console/pkg/configuration"
	"github.com/iota-uz/org-console/pkg/logging"
	"github.com/iota-uz/org-console/pkg/rest"
)

const (
	exitOK      = 0
	exitPartial = 2
	exitUsage   = 3
	exitBackend = 4
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

type rootOptions struct {
	backend   configuration.BackendOptions
	favorites configuration.FavoritesOptions
	redisURL  string
	verbose   bool
}

// logger writes to stderr so command output on stdout stays machine readable.
func (o *rootOptions) logger() *logrus.Logger {
	level := logrus.WarnLevel
	if o.verbose {
		level = logrus.DebugLevel
	}
	return logging.ConsoleLogger(os.Stderr, level)
}

func (o *rootOptions) transport() (*rest.Client, error) {
	client, err := rest.New(rest.Options{
		BaseURL: o.backend.BaseURL(),
		Timeout: o.backend.Timeout,
		Logger:  o.logger(),
	})
	return client, withCode(exitUsage, err)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	// Flags default to the same environment the server reads.
	_ = env.Parse(&opts.backend)
	_ = env.Parse(&opts.favorites)
	opts.redisURL = os.Getenv("REDIS_URL")
	if opts.redisURL == "" {
		opts.redisURL = "localhost:6379"
	}

	cmd := &cobra.Command{
		Use:           "orgctl",
		Short:         "Inspect and maintain tenants, departments, positions and favorites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.backend.APIURL, "api-url", opts.backend.BaseURL(), "backend API base URL")
	flags.DurationVar(&opts.backend.Timeout, "timeout", opts.backend.Timeout, "per-request timeout")
	flags.IntVar(&opts.backend.DeleteConcurrency, "concurrency", opts.backend.DeleteConcurrency, "parallel deletes")
	flags.StringVar(&opts.favorites.Storage, "favorites-storage", opts.favorites.Storage, "favorites storage: file|sqlite|redis|memory")
	flags.StringVar(&opts.favorites.Path, "favorites-path", opts.favorites.Path, "favorites JSON file")
	flags.StringVar(&opts.favorites.SQLitePath, "favorites-sqlite", opts.favorites.SQLitePath, "favorites SQLite database")
	flags.StringVar(&opts.redisURL, "redis-url", opts.redisURL, "redis address for favorites")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	cmd.AddCommand(newPingCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newDeleteCmd(opts))
	cmd.AddCommand(newFavoritesCmd(opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}
