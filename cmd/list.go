package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	var (
		flagPrefix    string
		flagLimit     int
		flagCountOnly bool
	)

	command := &cobra.Command{
		Use:   "list",
		Short: "List indexed article slugs",
		Long:  `List slugs from the local index, optionally filtered by prefix.`,
		Example: `  grokipedia list --limit 50
  grokipedia list --prefix Art
  grokipedia list --count-only`,
	}

	command.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := initCore()
		if err != nil {
			return err
		}

		if err := c.LoadIndex(); err != nil {
			return fmt.Errorf("load slug index: %w", err)
		}

		if flagCountOnly {
			fmt.Printf("%s slugs indexed\n", humanize.Comma(int64(c.TotalArticleCount())))
			return nil
		}

		for _, slug := range c.ListAvailableArticles(flagPrefix, flagLimit) {
			fmt.Println(slug)
		}
		return nil
	}

	command.Flags().StringVar(&flagPrefix, "prefix", "", "Only list slugs with this prefix (case-insensitive)")
	command.Flags().IntVar(&flagLimit, "limit", 100, "Maximum number of slugs to list")
	command.Flags().BoolVar(&flagCountOnly, "count-only", false, "Print the total slug count only")

	return command
}
