// Command recctl talks to the recommendation service directly, for
// operators checking the service outside Telegram.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/service"
)

type options struct {
	url     string
	timeout time.Duration
	output  string

	clientName string
	notes      string
	refine     string
}

func isInteractive(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults, err := config.LoadRecommender()
	if err != nil {
		defaults = &config.Recommender{URL: "http://localhost:8000", Timeout: 90 * time.Second}
	}

	rootCmd := &cobra.Command{
		Use:           "recctl",
		Short:         "Jewellery recommendation service client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.url, "url", defaults.URL, "recommendation service base URL (RECOMMENDER_URL)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaults.Timeout, "request timeout (RECOMMENDER_TIMEOUT)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "auto", "output format: auto, text or yaml")

	rootCmd.AddCommand(
		newHealthCmd(opts),
		newUploadCmd(opts, defaults),
		newRecommendCmd(opts),
		newAskCmd(opts, defaults),
		newSelectCmd(opts),
		newCartCmd(opts),
	)
	return rootCmd
}

func (o *options) client() *service.RecommenderService {
	return service.NewRecommenderService(o.url, o.timeout)
}

func (o *options) printer(cmd *cobra.Command) (*printer, error) {
	format := o.output
	if format == "auto" {
		format = "yaml"
		if f, ok := cmd.OutOrStdout().(*os.File); ok && isInteractive(f.Fd()) {
			format = "text"
		}
	}
	switch format {
	case "text", "yaml":
		return &printer{w: cmd.OutOrStdout(), yaml: format == "yaml"}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", o.output)
	}
}
