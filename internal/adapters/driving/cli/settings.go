package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the content backend, paging and cache options.

Settings are stored in the config file; less common options can be edited
there directly.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsBackendCmd = &cobra.Command{
	Use:   "backend [kind] [url]",
	Short: "Set the content backend",
	Long: `Set the content backend.

Available kinds:
  local - records stored in the local SQLite database
  http  - a remote content service at the given URL`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsBackend,
}

var settingsPageSizeCmd = &cobra.Command{
	Use:   "page-size [n]",
	Short: "Set the number of groups per page",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsPageSize,
}

var (
	assistantURL    string
	assistantAPIKey string
)

var settingsAssistantCmd = &cobra.Command{
	Use:   "assistant [provider] [model]",
	Short: "Set the language model behind ask and summarise",
	Long: `Set the language model used by the ask command, the TUI and MCP.

Available providers:
  ollama    - a local Ollama server (model required)
  openai    - OpenAI or a compatible API (--api-key required)
  anthropic - Anthropic (--api-key required)`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsAssistant,
}

func init() {
	settingsAssistantCmd.Flags().StringVar(&assistantURL, "url", "", "API base URL override")
	settingsAssistantCmd.Flags().StringVar(&assistantAPIKey, "api-key", "", "API key for hosted providers")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsAssistantCmd)
	settingsCmd.AddCommand(settingsBackendCmd)
	settingsCmd.AddCommand(settingsPageSizeCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Backend:")
	cmd.Printf("  Kind:       %s\n", s.Backend.Kind.Description())
	if s.Backend.Kind == domain.BackendHTTP {
		cmd.Printf("  URL:        %s\n", redactURL(s.Backend.URL))
		cmd.Printf("  Rate limit: %s\n", formatRate(s.Backend.RateLimit))
		cmd.Printf("  Timeout:    %s\n", s.Backend.Timeout)
	}

	cmd.Println("\nLibrary:")
	cmd.Printf("  Page size:       %d\n", s.Library.PageSize)
	cmd.Printf("  Server hard cap: %d\n", s.Library.ServerHardCap)
	cmd.Printf("  Sort:            %s\n", s.Library.Sort)
	cmd.Printf("  Delete workers:  %d\n", s.DeleteConcurrency)

	cmd.Println("\nCache:")
	cmd.Printf("  Kind: %s\n", s.Cache.Kind)
	if s.Cache.Dir != "" {
		cmd.Printf("  Dir:  %s\n", s.Cache.Dir)
	}

	cmd.Println("\nAssistant:")
	if s.Assistant.IsConfigured() {
		cmd.Printf("  Provider: %s\n", s.Assistant.ProviderOrDefault().Description())
		if s.Assistant.Model != "" {
			cmd.Printf("  Model:    %s\n", s.Assistant.Model)
		}
		if s.Assistant.BaseURL != "" {
			cmd.Printf("  URL:      %s\n", redactURL(s.Assistant.BaseURL))
		}
		if s.Assistant.APIKey != "" {
			cmd.Printf("  API key:  %s\n", maskSecret(s.Assistant.APIKey))
		}
	} else {
		cmd.Println("  Not configured")
	}

	if s.WatchDir != "" {
		cmd.Printf("\nWatch folder: %s\n", s.WatchDir)
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("\nWarning: %v\n", err)
	}
	return nil
}

func runSettingsBackend(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	kind := domain.BackendKind(args[0])
	rawURL := ""
	if len(args) == 2 {
		rawURL = args[1]
	}
	if err := settingsService.SetBackend(kind, rawURL); err != nil {
		return fmt.Errorf("failed to set backend: %w", err)
	}

	cmd.Printf("Backend set to %s.\n", kind.Description())
	return nil
}

func runSettingsPageSize(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid page size %q", args[0])
	}
	if err := settingsService.SetPageSize(n); err != nil {
		return fmt.Errorf("failed to set page size: %w", err)
	}

	cmd.Printf("Page size set to %d.\n", n)
	return nil
}

func runSettingsAssistant(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	a := domain.AssistantSettings{
		Provider: domain.AIProvider(args[0]),
		BaseURL:  assistantURL,
		APIKey:   assistantAPIKey,
	}
	if len(args) == 2 {
		a.Model = args[1]
	}
	if err := settingsService.SetAssistant(a); err != nil {
		return fmt.Errorf("failed to set assistant: %w", err)
	}

	cmd.Printf("Assistant set to %s.\n", a.Provider.Description())
	return nil
}

// maskSecret keeps the last four characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// redactURL hides any credentials embedded in a URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

func formatRate(r float64) string {
	if r <= 0 {
		return "unlimited"
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + " req/s"
}
