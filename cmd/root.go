package cmd

import (
	"fmt"

	"github.com/kvasirlabs/grokipedia-go/pkg/client"
	"github.com/kvasirlabs/grokipedia-go/pkg/config"
	"github.com/kvasirlabs/grokipedia-go/pkg/logger"
)

// Global flags bound by main.
var (
	FlagConfigFile string = "config.yaml"
	FlagLogFile    string
	FlagLogLevel   int
)

// initCore sets up logging, loads configuration and constructs the
// client. Called at the start of every command that needs one.
func initCore() (*client.Client, error) {
	if err := logger.Init(FlagLogLevel, FlagLogFile); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := config.Load(FlagConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	c, err := client.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}
	return c, nil
}
