package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quarkusio/extensions-enricher/internal/cli"
	errs "github.com/quarkusio/extensions-enricher/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		code := exitCode(err)
		if code != exitInterrupted {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(code)
	}
}

// Exit codes.
const (
	exitFailure     = 1
	exitUsage       = 2 // bad config, input or flags
	exitGitHub      = 3 // GitHub refused the token or the rate limit is spent
	exitInterrupted = 130
)

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	var rl *errs.RateLimitedError
	if errors.As(err, &rl) {
		return exitGitHub
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidConfig, errs.ErrCodeInvalidInput, errs.ErrCodeFileNotFound:
		return exitUsage
	case errs.ErrCodeUnauthorized, errs.ErrCodeRateLimited:
		return exitGitHub
	}
	return exitFailure
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
