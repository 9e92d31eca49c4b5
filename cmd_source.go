package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"centerhub/internal/dashboard"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Show or change the spreadsheet the dashboard reads",
}

var sourceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active spreadsheet id and its links",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		id := a.dash.SheetID()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id:     %s\n", id)
		fmt.Fprintf(out, "edit:   %s\n", a.sheets.EditURL(id))
		fmt.Fprintf(out, "export: %s\n", a.sheets.ExportURL(id))
		return nil
	},
}

var sourceSetCmd = &cobra.Command{
	Use:   "set <sheet link or id>",
	Short: "Point the dashboard at another spreadsheet",
	Long: `Accepts a full Google Sheets link or a bare spreadsheet id. The id is
stored in the settings store and used by every later command. The new sheet
is loaded once to confirm it can be read.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.dash.UpdateSource(args[0])
		if err != nil {
			if n, ok := a.dash.Notice(); ok && n.Kind == dashboard.KindError {
				return fmt.Errorf("%s: %w", n.Message, err)
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dashboard.MsgSourceUpdated, id)

		ctx, cancel := commandContext(true)
		defer cancel()
		snap, err := a.dash.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", dashboard.MsgLoadFailed, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d centers\n", len(snap.Records))
		return nil
	},
}
