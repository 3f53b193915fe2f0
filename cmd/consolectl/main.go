package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "consolectl",
		Short:         "Operator tooling for the voice agent console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		catalogCommand(),
		historyCommand(),
		auditCommand(),
	)
	return root
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
