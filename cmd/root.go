// Package cmd wires the ragnews command-line interface.
//
// The root command launches the interactive TUI browser; subcommands give
// the same operations a scriptable surface. Both sit on the same session
// store, remote client, and configuration.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ragnews",
		Short: "Terminal client for the RAG News knowledge base service",
		Long: `ragnews manages knowledge bases on a RAG News backend: create and
delete bases, upload documents, and watch the ingestion status of each
file. Run without arguments for the interactive browser, or use the
subcommands for scripting.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse()
		},
	}

	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newKBCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute is the entry point called from main.
func Execute() error {
	return NewRootCmd().Execute()
}
