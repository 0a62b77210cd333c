package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var summariseMax int

var askCmd = &cobra.Command{
	Use:   "ask [group-key] [question]",
	Short: "Ask a question about a group's content",
	Long: `Answers a question using the text of one group as context. Chunked
documents contribute their combined text.

Requires an assistant model (assistant.model in the config file).`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

var summariseCmd = &cobra.Command{
	Use:   "summarise [group-key]",
	Short: "Summarise a group's content",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarise,
}

func init() {
	summariseCmd.Flags().IntVarP(&summariseMax, "max", "m", 280, "maximum summary length in characters")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(summariseCmd)
}

func requireAssistant() error {
	if assistantService == nil || !assistantService.Available() {
		return errors.New("assistant not configured: set assistant.model in the config file")
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}

	question := strings.Join(args[1:], " ")
	answer, err := assistantService.Ask(commandContext(cmd), args[0], question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println(answer)
	return nil
}

func runSummarise(cmd *cobra.Command, args []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}

	summary, err := assistantService.Summarise(commandContext(cmd), args[0], summariseMax)
	if err != nil {
		return fmt.Errorf("summarise failed: %w", err)
	}
	cmd.Println(summary)
	return nil
}
