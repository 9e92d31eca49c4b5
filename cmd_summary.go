package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"centerhub/internal/filter"
	"centerhub/internal/summary"
)

var (
	summaryOut     string
	summaryTitle   string
	summaryFilters *filterFlags
)

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Short:   "Render the filtered centers as a PNG table",
	Example: `  centerhub summary --upazila Kasba -o kasba.png`,
	Args:    cobra.NoArgs,
	RunE:    runSummary,
}

func init() {
	summaryFilters = addFilterFlags(summaryCmd)
	summaryCmd.Flags().StringVarP(&summaryOut, "output", "o", "summary.png", "Output file")
	summaryCmd.Flags().StringVar(&summaryTitle, "title", "", "Table title (default: the upazila filter)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	sel, err := summaryFilters.selection()
	if err != nil {
		return err
	}
	a, err := loadedApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records := a.dash.Query(sel)
	if len(records) == 0 {
		return errors.New("no centers match the filters")
	}

	title := summaryTitle
	if title == "" {
		if u := sel.Get(filter.Upazila); u != filter.All {
			title = u
		}
	}

	png, err := summary.NewRenderer().RenderTable(records, title)
	if err != nil {
		return err
	}
	if err := os.WriteFile(summaryOut, png, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", summaryOut, err)
	}
	logger.Info("✓ Summary written", zap.String("file", summaryOut), zap.Int("centers", len(records)))
	return nil
}
