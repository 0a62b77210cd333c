package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/watch"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Add records dropped into a folder",
	Long: `Watches a folder for JSON record files, text and markdown and adds
each one to the library.
Submitted files are moved to processed/, rejected ones to failed/.

The folder defaults to watch.dir from the config file. Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	dir := watchDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no folder to watch: pass one or set watch.dir in the config file")
	}

	ctx := commandContext(cmd)
	if startServices != nil {
		startServices(ctx)
	}

	results := make(chan watch.Result, 16)
	w := watch.New(dir, libraryService, watch.WithLogger(logger.Zap()), watch.WithResults(results))

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	cmd.Printf("Watching %s for record files (Ctrl+C to stop)\n", w.Dir())
	for {
		select {
		case res := <-results:
			if res.Err != nil {
				cmd.Printf("  rejected %s: %v\n", res.Path, res.Err)
			} else {
				cmd.Printf("  added %s from %s\n", plural(res.Records, "record"), res.Path)
			}
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("watch failed: %w", err)
			}
			return nil
		}
	}
}
