package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [group-key]",
	Short: "Delete a group and every record in it",
	Long: `Deletes every record of a group. A chunked document loses all of its
chunks and an image stack all of its pages. If any record fails to delete,
the library is left unchanged and the failure count is reported.

Group keys are shown by the page command.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	group, err := libraryService.FindGroup(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to find group: %w", err)
	}

	if !deleteYes {
		if group.IsComposite() {
			cmd.Printf("Delete %q (%s)? [y/N]: ", displayTitle(group), plural(group.LeafCount(), "record"))
		} else {
			cmd.Printf("Delete %q? [y/N]: ", displayTitle(group))
		}
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	outcome, err := libraryService.RequestDelete(ctx, *group)
	if errors.Is(err, domain.ErrPartialDelete) {
		cmd.Printf("Deleted %d of %d records; %d failed. Nothing was removed from the listing.\n",
			outcome.Deleted, outcome.Total(), outcome.Failed)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	cmd.Printf("Deleted %s.\n", plural(outcome.Deleted, "record"))
	return nil
}
