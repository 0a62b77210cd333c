package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	infoTimeout time.Duration
	infoJSON    bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show library statistics",
	Long: `Shows record counts and collections reported by the backend, along with
the current connection state.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().DurationVar(&infoTimeout, "timeout", 10*time.Second, "how long to wait for the backend")
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), infoTimeout)
	defer cancel()

	info, err := libraryService.LoadInfo(ctx)
	if err != nil {
		return fmt.Errorf("library info unavailable: %w", err)
	}
	if infoJSON {
		return printJSON(cmd, info)
	}

	cmd.Println("Library:")
	cmd.Printf("  Documents:   %d\n", info.Documents)
	cmd.Printf("  Images:      %d\n", info.Images)
	if len(info.Collections) > 0 {
		cmd.Printf("  Collections: %s\n", strings.Join(info.Collections, ", "))
	}
	if len(info.Extra) > 0 {
		keys := make([]string, 0, len(info.Extra))
		for k := range info.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("  %s: %v\n", k, info.Extra[k])
		}
	}

	state := libraryService.ConnectionState()
	cmd.Println()
	if state.Degraded() {
		cmd.Printf("Connection: degraded (%d consecutive failures)\n", state.ConsecutiveFailures)
		if state.LastError != "" {
			cmd.Printf("  Last error: %s\n", state.LastError)
		}
	} else {
		cmd.Println("Connection: ok")
	}
	return nil
}
