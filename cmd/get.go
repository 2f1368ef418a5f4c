package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvasirlabs/grokipedia-go/pkg/client"
	"github.com/kvasirlabs/grokipedia-go/pkg/logger"
)

func GetCommand() *cobra.Command {
	var (
		flagSummary     bool
		flagSection     string
		flagConcurrency int
	)

	command := &cobra.Command{
		Use:   "get SLUG...",
		Short: "Fetch one or more articles",
		Long:  `Fetch articles by slug and print them as JSON.`,
		Example: `  grokipedia get Joe_Biden
  grokipedia get Joe_Biden --summary
  grokipedia get Joe_Biden --section "Early Life"
  grokipedia get Joe_Biden Kamala_Harris --concurrency 2`,
		Args: cobra.MinimumNArgs(1),
	}

	command.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := initCore()
		if err != nil {
			return err
		}
		log := logger.GetLogger("get")

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		ctx := cmd.Context()

		switch {
		case flagSection != "":
			if len(args) != 1 {
				return fmt.Errorf("--section requires exactly one slug")
			}
			section, err := c.GetSection(ctx, args[0], flagSection)
			if err != nil {
				return fmt.Errorf("get section: %w", err)
			}
			if section == nil {
				log.Warnf("No section matching %q in %q", flagSection, args[0])
				return nil
			}
			return enc.Encode(section)

		case flagSummary:
			for _, slug := range args {
				summary, err := c.GetSummary(ctx, slug)
				if err != nil {
					return fmt.Errorf("get summary for %q: %w", slug, err)
				}
				if err := enc.Encode(summary); err != nil {
					return err
				}
			}
			return nil

		case len(args) == 1:
			article, err := c.GetArticle(ctx, args[0])
			if err != nil {
				if client.IsNotFound(err) {
					log.Warnf("Article not found: %q", args[0])
					return nil
				}
				return fmt.Errorf("get article: %w", err)
			}
			return enc.Encode(article)

		default:
			articles, err := c.GetArticles(ctx, args, flagConcurrency)
			if err != nil {
				return fmt.Errorf("get articles: %w", err)
			}
			return enc.Encode(articles)
		}
	}

	command.Flags().BoolVar(&flagSummary, "summary", false, "Fetch summaries instead of full articles")
	command.Flags().StringVar(&flagSection, "section", "", "Print a single section by title")
	command.Flags().IntVar(&flagConcurrency, "concurrency", 4, "Parallel fetches when getting multiple slugs")

	return command
}
