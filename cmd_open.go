package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"centerhub/internal/browser"
)

var (
	openAction   string
	openHeadless bool
)

var openCmd = &cobra.Command{
	Use:   "open <id|serial>",
	Short: "Open a center's map or phone link in Chrome",
	Long: `Resolves an outbound action for one center and opens it in a new tab:
  map         driving directions to the center
  call        tel: link of the presiding officer
  magistrate  tel: link of the magistrate

Nothing is opened when the center has no value for the action.
The browser stays open until Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().StringVarP(&openAction, "action", "a", string(browser.ActionMap), "map, call or magistrate")
	openCmd.Flags().BoolVar(&openHeadless, "headless", false, "Run Chrome without a window")
}

func runOpen(cmd *cobra.Command, args []string) error {
	action, err := browser.ParseAction(openAction)
	if err != nil {
		return err
	}
	a, err := loadedApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, ok := a.dash.Find(args[0])
	if !ok {
		return fmt.Errorf("no center with id or serial %q", args[0])
	}

	launcher := browser.NewLauncher(logger, browser.WithHeadless(openHeadless))
	defer launcher.Close()

	ctx, stop := commandContext(false)
	defer stop()

	opened, err := browser.Perform(ctx, launcher, rec, action, logger)
	if err != nil {
		return err
	}
	if !opened {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: no %s link\n", rec.CenterName, action)
		return nil
	}
	logger.Info("⏳ Browser open, press Ctrl+C to close", zap.String("center", rec.CenterName))
	<-ctx.Done()
	return nil
}
