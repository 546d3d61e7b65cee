package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/whirlpool/internal/filter"
	"github.com/dyluth/whirlpool/internal/printer"
	"github.com/dyluth/whirlpool/internal/timespec"
	"github.com/dyluth/whirlpool/internal/watch"
	"github.com/dyluth/whirlpool/pkg/blackboard"
	"github.com/spf13/cobra"
)

var (
	watchRedisURL     string
	watchInstanceName string
	watchOutputFormat string
	watchOnce         bool
	watchTimeout      time.Duration
	watchSince        string
	watchUntil        string
	watchThinker      string
	watchSkipEmpty    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a running cave through its Redis mirror",
	Long: `Follow the thoughts of a running cave that mirrors into Redis.

Prints the latest mirrored thought, then every new one as it is committed.

Output Formats:
  default - Human-readable output with timestamps
  json    - Line-delimited JSON for programmatic processing

Examples:
  # Watch the default instance on a local Redis
  whirlpool watch

  # Watch a named instance
  whirlpool watch --redis redis://cache:6379 --name prod

  # Only Wikipedia thoughts from the last five minutes, skipping silences
  whirlpool watch --since 5m --thinker 'Wiki*' --skip-empty

  # Wait for the next thought and exit
  whirlpool watch --once --timeout 30s`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchRedisURL, "redis", defaultRedisURL(), "Redis URL (defaults to $REDIS_URL)")
	watchCmd.Flags().StringVarP(&watchInstanceName, "name", "n", "default", "Cave instance name")
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Print the next committed thought and exit")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", time.Minute, "How long --once waits")
	watchCmd.Flags().StringVar(&watchSince, "since", "", "Only thoughts after this time (duration like 5m or RFC3339)")
	watchCmd.Flags().StringVar(&watchUntil, "until", "", "Only thoughts before this time (duration like 5m or RFC3339)")
	watchCmd.Flags().StringVar(&watchThinker, "thinker", "", "Glob over thinker names")
	watchCmd.Flags().BoolVar(&watchSkipEmpty, "skip-empty", false, "Hide rounds where the thinker had nothing to say")
	rootCmd.AddCommand(watchCmd)
}

func defaultRedisURL() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	return "redis://localhost:6379"
}

func runWatch(cmd *cobra.Command, args []string) error {
	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "json":
		outputFormat = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	sinceMs, untilMs, err := timespec.ParseRange(watchSince, watchUntil, time.Now())
	if err != nil {
		return printer.Error("invalid time range", err.Error(), []string{"Use a duration like 5m or RFC3339 like 2025-10-29T13:00:00Z"})
	}
	criteria := &filter.Criteria{
		SinceTimestampMs: sinceMs,
		UntilTimestampMs: untilMs,
		ThinkerGlob:      watchThinker,
		SkipEmpty:        watchSkipEmpty,
	}
	if err := criteria.Validate(); err != nil {
		return printer.Error("invalid filter", err.Error(), []string{"Use a glob such as 'Wiki*'"})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bbClient, err := blackboard.NewClientFromURL(watchRedisURL, watchInstanceName)
	if err != nil {
		return fmt.Errorf("failed to create blackboard client: %w", err)
	}
	defer bbClient.Close()

	if err := bbClient.Ping(ctx); err != nil {
		return printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", watchRedisURL),
			map[string]string{"Instance": watchInstanceName},
			[]string{
				"Start a cave with a redis section in whirlpool.yml:\n  whirlpool serve",
				"Point at another Redis with --redis",
			},
		)
	}

	out := cmd.OutOrStdout()
	if !watchOnce {
		return watch.StreamFilteredThoughts(ctx, bbClient, outputFormat, criteria, out)
	}

	r, err := watch.PollForThought(ctx, bbClient, time.Now(), watchTimeout)
	if err != nil {
		return printer.Error(
			"no thought received",
			err.Error(),
			[]string{fmt.Sprintf("Check that a cave named '%s' is serving", watchInstanceName)},
		)
	}
	if outputFormat == watch.OutputFormatJSON {
		return watch.WriteJSON(out, r)
	}
	return printer.Thought(out, r.Thinker, r.Thought)
}
