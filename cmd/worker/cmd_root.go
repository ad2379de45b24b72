package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "address-worker",
		Short:   "Offline US address validation",
		Version: version,
		Long: `
address-worker runs the same local heuristic used by the HTTP service over
files of addresses, one per line, without any cache or network dependency.
`,
		SilenceUsage: true,
	}

	root.AddCommand(newValidateCmd())
	return root
}
