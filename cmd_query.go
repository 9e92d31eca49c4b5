package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"centerhub/internal/center"
	"centerhub/internal/filter"
)

var (
	listJSON    bool
	listFilters *filterFlags
	optFilters  *filterFlags
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the centers matching the filter flags",
	Example: `  centerhub list --upazila Kasba --risk "ঝুঁকিপূর্ণ"
  centerhub list --voters gt2500 --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var optionsCmd = &cobra.Command{
	Use:   "options <dimension>",
	Short: "Show the values a filter can take under the other filters",
	Long: `Prints the cascading options of one filter: every value that still
yields results when only that filter changes. Dimensions: upazila, union,
risk, type, police, bgb, army, rab, voters.`,
	Args: cobra.ExactArgs(1),
	RunE: runOptions,
}

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "Show every upazila with its center count",
	Args:  cobra.NoArgs,
	RunE:  runTabs,
}

func init() {
	listFilters = addFilterFlags(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print records as JSON")
	optFilters = addFilterFlags(optionsCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	sel, err := listFilters.selection()
	if err != nil {
		return err
	}
	a, err := loadedApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records := a.dash.Query(sel)
	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return printRecords(out, records)
}

func runOptions(cmd *cobra.Command, args []string) error {
	d, err := filter.ParseDimension(args[0])
	if err != nil {
		return err
	}
	sel, err := optFilters.selection()
	if err != nil {
		return err
	}
	a, err := loadedApp()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, o := range a.dash.OptionsFor(sel, d) {
		fmt.Fprintln(cmd.OutOrStdout(), o)
	}
	return nil
}

func runTabs(cmd *cobra.Command, args []string) error {
	a, err := loadedApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return printTabs(cmd.OutOrStdout(), a.dash.Tabs())
}

// loadedApp builds the app and fetches the sheet once.
func loadedApp() (*app, error) {
	a, err := newApp(cfg, logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := commandContext(true)
	defer cancel()
	if err := a.load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func printRecords(w io.Writer, records []center.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIAL\tCENTER\tUPAZILA\tUNION\tRISK\tVOTERS\tOFFICER\tPHONE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.SerialNo, r.CenterName, r.Upazila, r.Union, r.RiskStatus, r.TotalVoters, r.OfficerName, r.Phone)
	}
	fmt.Fprintf(tw, "\n%d centers\n", len(records))
	return tw.Flush()
}

func printTabs(w io.Writer, tabs []filter.Tab) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range tabs {
		fmt.Fprintf(tw, "%s\t%d\n", t.Name, t.Count)
	}
	return tw.Flush()
}
