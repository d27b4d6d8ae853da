package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/client"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/logging"
)

// ErrServerDown is returned by the health command when the server does not
// answer.
var ErrServerDown = errors.New("server is not reachable")

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the Qwery server is reachable",
	Long:  "Check the configured Qwery server and print its status.",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	logging.SetupConsole(cmd.ErrOrStderr(), logging.ParseLevel(s.logLevel))

	out := cmd.OutOrStdout()
	start := time.Now()
	if err := s.client().Health(cmd.Context()); err != nil {
		errorStyle.Fprintf(out, "%s %s is down\n", xmark, s.serverURL)
		if errors.Is(err, client.ErrServerUnavailable) {
			mutedStyle.Fprintf(out, "  %v\n", err)
			return ErrServerDown
		}
		return fmt.Errorf("health check: %w", err)
	}
	okStyle.Fprintf(out, "%s %s is up", checkmark, s.serverURL)
	mutedStyle.Fprintf(out, " (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
