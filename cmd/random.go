package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func RandomCommand() *cobra.Command {
	var flagCount int

	command := &cobra.Command{
		Use:   "random",
		Short: "Print random article slugs",
		Long:  `Print a random sample of slugs from the local index.`,
		Example: `  grokipedia random
  grokipedia random --count 5`,
	}

	command.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := initCore()
		if err != nil {
			return err
		}

		if err := c.LoadIndex(); err != nil {
			return fmt.Errorf("load slug index: %w", err)
		}

		for _, slug := range c.RandomArticles(flagCount) {
			fmt.Println(slug)
		}
		return nil
	}

	command.Flags().IntVar(&flagCount, "count", 1, "Number of random slugs")

	return command
}
