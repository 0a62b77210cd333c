// Package cli implements the sercha-library command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// NotificationFeed exposes recent user-visible outcomes.
type NotificationFeed interface {
	Recent() []domain.Notification
	Subscribe(buffer int) (<-chan domain.Notification, func())
}

// ChangeFeed exposes settled record cache changes.
type ChangeFeed interface {
	Subscribe(buffer int) (<-chan domain.CacheChange, func())
}

// Services groups everything the commands call into.
type Services struct {
	Library       driving.LibraryService
	Assistant     driving.AssistantService
	Settings      driving.SettingsService
	Notifications NotificationFeed
	Changes       ChangeFeed

	// WatchDir is the configured drop folder.
	WatchDir string

	// Start runs background loops (push events, info panel) until ctx ends.
	Start func(ctx context.Context)
}

// Bootstrap builds Services once flags are parsed. The returned function
// releases them.
type Bootstrap func(ctx context.Context, configPath string) (Services, func() error, error)

var (
	libraryService   driving.LibraryService
	assistantService driving.AssistantService
	settingsService  driving.SettingsService
	notifications    NotificationFeed
	changes          ChangeFeed
	watchDir         string
	startServices    func(ctx context.Context)

	bootstrap Bootstrap
	release   func() error
)

// Global flags.
var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "sercha-library",
	Short: "Browse and manage a content library",
	Long: `sercha-library pages through the records of a content backend,
grouping chunked documents and images extracted from the same file into
single entries. Groups can be browsed, deleted, added to and asked about.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// SetServices installs services directly, bypassing Bootstrap.
func SetServices(s Services) {
	libraryService = s.Library
	assistantService = s.Assistant
	settingsService = s.Settings
	notifications = s.Notifications
	changes = s.Changes
	watchDir = s.WatchDir
	startServices = s.Start
}

// Execute runs the root command. b is called once flags are parsed.
func Execute(ctx context.Context, b Bootstrap) error {
	bootstrap = b
	err := rootCmd.ExecuteContext(ctx)
	bootstrap = nil
	if release != nil {
		if cerr := release(); cerr != nil {
			logger.Warn("shutdown: %v", cerr)
		}
		release = nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.sercha-library/config.toml)")
}

// setup applies global flags and wires services on first use.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if libraryService != nil || bootstrap == nil || !needsServices(cmd) {
		return nil
	}

	svcs, closeFn, err := bootstrap(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	SetServices(svcs)
	release = closeFn
	return nil
}

// needsServices is false for commands that only print static output.
func needsServices(cmd *cobra.Command) bool {
	return cmd.Annotations["services"] != "none"
}

// noServices marks a command that runs without wiring.
var noServices = map[string]string{"services": "none"}

func requireLibrary() error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
