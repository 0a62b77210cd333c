package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

var (
	pageJSONOut bool
	filterDate  string
	filterType  string
	filterPage  int
)

var pageCmd = &cobra.Command{
	Use:   "page [n]",
	Short: "Show a page of library groups",
	Long: `Shows one page of groups. Chunked documents and images extracted from
the same file are listed as a single entry with their record count.

Records are fetched as needed to cover the requested page.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPage,
}

var moreCmd = &cobra.Command{
	Use:   "more",
	Short: "Load the next batch of records",
	Long:  `Fetches the next batch of records beyond those already loaded and shows the current page.`,
	Args:  cobra.NoArgs,
	RunE:  runMore,
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "List groups matching a date or content type filter",
	Long: `Applies a filter and shows the first matching page.

Date filters: all, today, week, month
Content types: document, image`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func init() {
	for _, c := range []*cobra.Command{pageCmd, moreCmd, filterCmd} {
		c.Flags().BoolVar(&pageJSONOut, "json", false, "output the page as JSON")
	}
	filterCmd.Flags().StringVarP(&filterDate, "date", "d", string(domain.DateFilterAll), "date filter (all, today, week, month)")
	filterCmd.Flags().StringVarP(&filterType, "type", "t", "", "content type (document, image)")
	filterCmd.Flags().IntVarP(&filterPage, "page", "p", 1, "page to show")

	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(moreCmd)
	rootCmd.AddCommand(filterCmd)
}

func runPage(cmd *cobra.Command, args []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	n := 1
	if len(args) == 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid page %q: must be a positive number", args[0])
		}
		n = parsed
	}

	page, err := libraryService.GoToPage(commandContext(cmd), n)
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	return printPage(cmd, page, pageJSONOut)
}

func runMore(cmd *cobra.Command, _ []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	before, err := libraryService.GetCurrentPage(ctx)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
	if !before.HasMore {
		cmd.Printf("All %s are loaded.\n", plural(before.CachedCount, "record"))
		return printPage(cmd, before, pageJSONOut)
	}

	page, err := libraryService.LoadMore(ctx)
	if err != nil {
		return fmt.Errorf("failed to load more: %w", err)
	}
	if !pageJSONOut {
		cmd.Printf("Loaded %s.\n\n", plural(page.CachedCount-before.CachedCount, "record"))
	}
	return printPage(cmd, page, pageJSONOut)
}

func runFilter(cmd *cobra.Command, _ []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	filter := domain.Filter{
		Date:        domain.DateFilter(filterDate),
		ContentType: domain.ContentType(filterType),
	}
	page, err := libraryService.SetFilter(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to apply filter: %w", err)
	}
	if filterPage > 1 {
		page, err = libraryService.GoToPage(ctx, filterPage)
		if err != nil {
			return fmt.Errorf("failed to load page: %w", err)
		}
	}
	return printPage(cmd, page, pageJSONOut)
}
