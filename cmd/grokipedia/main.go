package main

import (
	"fmt"
	"os"

	"github.com/kvasirlabs/grokipedia-go/cmd"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "grokipedia",
		Short: "A CLI Grokipedia client",
		Long: `A CLI application for searching the Grokipedia slug index and fetching articles.
`,
	}

	// Parse persistent flags
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagConfigFile, "config", "c", cmd.FlagConfigFile, "Config file")
	rootCmd.PersistentFlags().StringVarP(&cmd.FlagLogFile, "log", "l", cmd.FlagLogFile, "Log file")
	rootCmd.PersistentFlags().CountVarP(&cmd.FlagLogLevel, "verbose", "v", "Verbose level")

	rootCmd.AddCommand(cmd.SearchCommand())
	rootCmd.AddCommand(cmd.GetCommand())
	rootCmd.AddCommand(cmd.ListCommand())
	rootCmd.AddCommand(cmd.RandomCommand())
	rootCmd.AddCommand(cmd.UpdateCommand())
	rootCmd.AddCommand(cmd.VersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
