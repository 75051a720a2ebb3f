package main

import (
	"fmt"

	"github.com/spf13/cobra"

	kgserver "github.com/HendryAvila/knowgraph/internal/server"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "knowgraph %s\n", kgserver.Version)
		},
	}
}
