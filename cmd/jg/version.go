package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/jamgantt/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the jg version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jg %s\n", version.String())
		},
	}
}
