package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/tui"
)

// runProgram runs the bubbletea program; tests replace it.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for the library.

The TUI pages through grouped content, loads more on demand, and deletes
whole groups after confirmation. Backend pushes and outcomes appear in
the status bar.

Controls:
  ↑/k, ↓/j - Move selection
  ←/h, →/l - Previous / next page
  Enter    - Open item
  m        - Load more
  d        - Delete (asks first)
  f, t     - Cycle date / type filter
  ?        - Help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if err := requireLibrary(); err != nil {
		return err
	}

	// Background loops live as long as the UI.
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	if startServices != nil {
		startServices(ctx)
	}

	app, err := tui.NewApp(tui.NewPorts(libraryService, assistantService, notifications, changes))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
