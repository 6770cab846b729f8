package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docsearch/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docsearch",
		Short:         "Hybrid lexical and semantic search over owner-scoped documents",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("env", "", "config environment (config/<env>.yaml), defaults to $ENV or local")

	root.AddCommand(newServeCmd(), newSearchCmd(), newReembedCmd())
	return root
}
