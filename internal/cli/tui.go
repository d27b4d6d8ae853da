package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/logging"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/paths"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal user interface",
	Long:  "Launch the interactive TUI. Running qwery with no command does the same.",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go to a file.
	cleanup, err := logging.Setup(s.cfg.GetLogFile(), logging.ParseLevel(s.logLevel))
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer cleanup()

	historyPath, err := paths.HistoryPath()
	if err != nil {
		slog.Warn("cli.tui: no history path, history will not persist", "error", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	slog.Info("cli.tui: starting", "server", s.serverURL, "work_dir", workDir)
	return tui.Run(tui.Options{
		Backend:     s.client(),
		Config:      s.cfg,
		HistoryPath: historyPath,
		WorkDir:     workDir,
	})
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
