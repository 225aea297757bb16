package main

import (
	"fmt"
	"os"

	"github.com/mattsolo1/grove-core/cli"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-foldergen/cmd"
	"github.com/mattsolo1/grove-foldergen/cmd/config"
	"github.com/mattsolo1/grove-foldergen/pkg/service"
	"github.com/mattsolo1/grove-foldergen/pkg/tree"
)

var svc *service.Service

func main() {
	rootCmd := cli.NewStandardCommand(
		"foldergen",
		"Create folders and files from an ASCII tree diagram",
	)
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// This runs once before any subcommand
		config.InitConfig()
		logger := config.NewLogger()

		var err error
		svc, err = config.InitService(tree.NewRegistry(), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize service: %w", err)
		}
		return nil
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if svc == nil {
			return nil
		}
		return svc.Close()
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewBuildCmd(&svc))
	rootCmd.AddCommand(cmd.NewDrawCmd(&svc))
	rootCmd.AddCommand(cmd.NewFindCmd(&svc))
	rootCmd.AddCommand(cmd.NewInitCmd(&svc))
	rootCmd.AddCommand(cmd.NewHistoryCmd(&svc))
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
