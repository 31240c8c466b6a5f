// Package cli implements the fayol command line: session management,
// resource listings and a local mock API.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/deividlukks/Fayol-sub007/pkg/config"
)

// Output formats
const (
	outputTable = "table"
	outputJSON  = "json"
)

// annotationSkipConfig marks commands that run without loading the config.
const annotationSkipConfig = "skip-config"

type globalFlags struct {
	configPath string
	apiURL     string
	quiet      bool
	output     string
}

// NewRootCmd builds the fayol command tree.
func NewRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}
	a := &app{flags: flags}

	root := &cobra.Command{
		Use:           "fayol",
		Short:         "Fayol API client",
		Long:          "Command line client for the Fayol finance API with cached, retrying requests",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationSkipConfig] == "true" {
				return nil
			}
			return a.loadConfig()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.fayol/"+config.DefaultFileName+")")
	pf.StringVar(&flags.apiURL, "api-url", "", "API base URL (overrides config and "+config.EnvAPIURL+")")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "only log warnings and errors")
	pf.StringVarP(&flags.output, "output", "o", outputTable, "output format: table or json")

	root.AddCommand(
		newAuthCmd(a),
		newAccountsCmd(a),
		newTransactionsCmd(a),
		newCategoriesCmd(a),
		newGetCmd(a),
		newMockServerCmd(a),
		newConfigCmd(a),
	)
	return root
}
