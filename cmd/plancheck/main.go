// Command plancheck validates test-plan documents against a template
// outline and a set of line-formatting rules.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "plancheck",
	Short:         "Check test-plan documents for structural conformance",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("plancheck: " + err.Error() + "\n")
		os.Exit(2)
	}
}
