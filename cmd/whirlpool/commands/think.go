package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dyluth/whirlpool/internal/config"
	"github.com/dyluth/whirlpool/internal/printer"
	"github.com/dyluth/whirlpool/internal/source"
	"github.com/dyluth/whirlpool/internal/tagger"
	"github.com/dyluth/whirlpool/internal/thinker"
	"github.com/spf13/cobra"
)

var (
	thinkProvider  string
	thinkName      string
	thinkBaseURL   string
	thinkAPIKeyEnv string
	thinkTimeout   time.Duration
	thinkNoTagger  bool
)

var thinkCmd = &cobra.Command{
	Use:   "think [flags] THOUGHT...",
	Short: "Run one thinker once against a thought",
	Long: fmt.Sprintf(`Run a single thinker round outside the cave and print the result.

The thinker behaves exactly as it does inside the cave, including its
fallback policy, so an empty line means the thinker had nothing to say.

Providers: %s

Examples:
  whirlpool think "Eiffel Tower"
  whirlpool think --provider loc paris
  NYT_API_KEY=... whirlpool think --provider nyt brexit`, strings.Join(source.Providers, ", ")),
	Args: cobra.MinimumNArgs(1),
	RunE: runThink,
}

func init() {
	thinkCmd.Flags().StringVarP(&thinkProvider, "provider", "p", source.Wikipedia, "Content provider")
	thinkCmd.Flags().StringVar(&thinkName, "name", "", "Thinker name (defaults to the provider)")
	thinkCmd.Flags().StringVar(&thinkBaseURL, "base-url", "", "Override the provider endpoint")
	thinkCmd.Flags().StringVar(&thinkAPIKeyEnv, "api-key-env", "", "Environment variable holding the API key")
	thinkCmd.Flags().DurationVar(&thinkTimeout, "timeout", 0, "Lookup timeout (provider default when 0)")
	thinkCmd.Flags().BoolVar(&thinkNoTagger, "no-tagger", false, "Disable part-of-speech tagging")
	rootCmd.AddCommand(thinkCmd)
}

func runThink(cmd *cobra.Command, args []string) error {
	name := thinkName
	if name == "" {
		name = thinkProvider
	}

	tc := config.ThinkerConfig{
		Provider:  thinkProvider,
		Timeout:   thinkTimeout,
		APIKeyEnv: thinkAPIKeyEnv,
		BaseURL:   thinkBaseURL,
	}
	if err := tc.Validate(name); err != nil {
		return printer.Error(
			"invalid thinker",
			err.Error(),
			[]string{fmt.Sprintf("Valid providers: %s", strings.Join(source.Providers, ", "))},
		)
	}
	if err := config.LoadEnv(".env"); err != nil {
		return err
	}

	shared := thinker.Shared{}
	if !thinkNoTagger {
		t, err := tagger.NewProse()
		if err != nil {
			return err
		}
		shared.Tagger = t
	}

	th, err := thinker.Build(tc.Spec(name), shared)
	if err != nil {
		suggestions := []string{"Check --base-url and --timeout"}
		if tc.APIKeyEnv != "" {
			suggestions = []string{fmt.Sprintf("Set %s in the environment or .env", tc.APIKeyEnv)}
		}
		return printer.Error(fmt.Sprintf("thinker '%s' cannot be built", name), err.Error(), suggestions)
	}

	thought := th.Think(context.Background(), strings.Join(args, " "))
	return printer.Thought(cmd.OutOrStdout(), th.Name(), thought)
}
