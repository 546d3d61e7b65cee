package commands

import (
	"fmt"
	"strings"

	"github.com/dyluth/whirlpool/internal/extract"
	"github.com/dyluth/whirlpool/internal/printer"
	"github.com/dyluth/whirlpool/internal/tagger"
	"github.com/spf13/cobra"
)

var (
	extractExclude       string
	extractTitle         string
	extractTitleFallback string
	extractFallback      string
	extractSeed          int64
	extractTagger        bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [flags] TEXT...",
	Short: "Run the noun extraction pipeline on a piece of text",
	Long: `Run the extraction pipeline offline, without contacting any provider.

Useful to see which word a thinker would pick from a given extract.

Examples:
  whirlpool extract "The Eiffel Tower is a landmark in Paris."
  whirlpool extract --exclude tower --tagger "The Eiffel Tower is in Paris."
  whirlpool extract --title "Dune (novel)" --title-fallback title "it so"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractExclude, "exclude", "x", "", "Word the result must differ from (the previous thought)")
	extractCmd.Flags().StringVar(&extractTitle, "title", "", "Title of the item the text came from")
	extractCmd.Flags().StringVar(&extractTitleFallback, "title-fallback", string(extract.TitleFirstToken), "Title fallback (first-token, title or none)")
	extractCmd.Flags().StringVar(&extractFallback, "fallback", string(extract.FallbackNone), "Fallback when nothing qualifies (none or noun)")
	extractCmd.Flags().Int64Var(&extractSeed, "seed", 0, "Seed for random picks (wall clock when 0)")
	extractCmd.Flags().BoolVar(&extractTagger, "tagger", false, "Use the part-of-speech tagger")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	title := extract.TitleMode(extractTitleFallback)
	if err := title.Validate(); err != nil {
		return printer.Error("invalid title fallback", err.Error(), []string{"Valid values: first-token, title, none"})
	}
	fallback := extract.Fallback(extractFallback)
	if err := fallback.Validate(); err != nil {
		return printer.Error("invalid fallback", err.Error(), []string{"Valid values: none, noun"})
	}

	opts := extract.Options{Title: title, Fallback: fallback}
	if extractSeed != 0 {
		opts.Chooser = extract.NewChooser(extractSeed)
	}
	if extractTagger {
		t, err := tagger.NewProse()
		if err != nil {
			return err
		}
		opts.Tagger = t
	}

	p := extract.New(opts)
	word, ok := p.Extract(extract.Input{Text: strings.Join(args, " "), Title: extractTitle}, extractExclude)
	if !ok {
		return printer.Error(
			"no result",
			"Nothing in the text qualifies as a new thought.",
			[]string{"Try --fallback noun", "Pass the item title with --title"},
		)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), word)
	return err
}
