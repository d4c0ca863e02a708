// Package main provides the CLI entry point for opencowork, the
// interactive session-runner backend that drives multi-turn
// conversations with an LLM provider and mediates its tool calls
// against the local workstation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "opencowork",
		Short: "Run the opencowork session-runner gateway",
		Long: `opencowork drives multi-turn conversations with an LLM provider and
mediates its tool invocations against the local workstation. It exposes a
WebSocket control plane that a desktop shell or other UI connects to.`,
	}

	rootCmd.AddCommand(buildServeCmd(), buildVersionCmd())
	return rootCmd
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the opencowork version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
