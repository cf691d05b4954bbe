package cli

import (
	"github.com/spf13/cobra"

	"github.com/crlszmr/vuln-scanner-sub000/config"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/importer"
)

func match() {
	matchCmd := &cobra.Command{
		Use:   "match DEVICE_ID",
		Short: "Match a device inventory against known vulnerabilities",
		Long: `Examples:
  # Run matching for device 42 and follow progress
  $ vulnconsole match 42`,
		Args: ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			deviceID := args[0]
			runImport(func(cfg *config.Config) importer.Kind {
				return importer.Matching(deviceID, cfg)
			})
		},
	}

	rootCmd.AddCommand(matchCmd)
}
