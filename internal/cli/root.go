package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/paths"
)

// Global flag values.
var (
	qweryDir  string
	serverURL string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "qwery",
	Short: "Terminal client for the Qwery data agent",
	Long:  "qwery talks to a Qwery server: ask questions about your data, manage datasources and run notebooks from the terminal.",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Path helpers read QWERY_DIR, so the flag is exported before any
		// config or history path is resolved.
		if qweryDir != "" {
			if err := os.Setenv(paths.EnvQweryDir, qweryDir); err != nil {
				return err
			}
		}
		return nil
	},
	RunE:         runTUI,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&qweryDir, "qwery-dir", "", "base directory for qwery data (overrides ~/.qwery)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Qwery server URL (overrides config and QWERY_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
