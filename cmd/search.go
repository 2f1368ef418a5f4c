package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kvasirlabs/grokipedia-go/pkg/expression"
	"github.com/kvasirlabs/grokipedia-go/pkg/logger"
)

func SearchCommand() *cobra.Command {
	var (
		flagLimit         int
		flagFuzzy         bool
		flagMinSimilarity float64
		flagFilters       []string
	)

	command := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search the slug index",
		Long:  `Search the local slug index for article slugs matching a query.`,
		Example: `  grokipedia search "joe biden"
  grokipedia search artificial intelligence --fuzzy --limit 25
  grokipedia search art --filter 'Length < 20'`,
		Args: cobra.MinimumNArgs(1),
	}

	command.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := initCore()
		if err != nil {
			return err
		}
		log := logger.GetLogger("search")

		filters, err := expression.Compile(flagFilters)
		if err != nil {
			return fmt.Errorf("compile filter expressions: %w", err)
		}

		if err := c.LoadIndex(); err != nil {
			return fmt.Errorf("load slug index: %w", err)
		}

		query := strings.Join(args, " ")
		matches := c.Index().Search(query, flagLimit, flagFuzzy, flagMinSimilarity)

		shown := 0
		for _, slug := range matches {
			ok, err := expression.MatchAll(expression.NewSlugInfo(slug), filters)
			if err != nil {
				return fmt.Errorf("evaluate filter for %q: %w", slug, err)
			}
			if !ok {
				continue
			}
			fmt.Println(slug)
			shown++
		}

		log.WithField("query", query).
			Debugf("Matched %d of %s indexed slugs", shown, humanize.Comma(int64(c.TotalArticleCount())))
		return nil
	}

	command.Flags().IntVar(&flagLimit, "limit", 10, "Maximum number of results")
	command.Flags().BoolVar(&flagFuzzy, "fuzzy", false, "Enable fuzzy matching fallback")
	command.Flags().Float64Var(&flagMinSimilarity, "min-similarity", 0.6, "Minimum similarity for fuzzy matches (0..1)")
	command.Flags().StringArrayVar(&flagFilters, "filter", nil, "Filter expression evaluated against each match (repeatable)")

	return command
}
