package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jjenkins/liturgical/internal/shortcode"
)

var (
	renderDate  string
	renderShow  string
	renderStyle string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print an embeddable fragment to stdout",
	Long: `Render a liturgical_calendar or liturgical_banner fragment with the stored
preferences, exactly as the embed endpoints would.

Examples:
  # Banner for next Sunday in the elegant style
  liturgical render banner --date next_sunday --style elegant

  # Calendar block with the full readings
  liturgical render calendar --date 2024-06-09 --show day_name,readings_full`,
}

var renderCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Render the detailed calendar block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, cleanup, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		component := a.Renderer.Calendar(ctx, shortcode.CalendarAttrs{Date: renderDate, Show: renderShow})
		if err := component.Render(ctx, cmd.OutOrStdout()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

var renderBannerCmd = &cobra.Command{
	Use:   "banner",
	Short: "Render the colored banner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, cleanup, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		attrs := shortcode.BannerAttrs{Date: renderDate, Style: renderStyle, Show: renderShow}
		if err := a.Renderer.Banner(ctx, attrs).Render(ctx, cmd.OutOrStdout()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.AddCommand(renderCalendarCmd, renderBannerCmd)

	renderCmd.PersistentFlags().StringVarP(&renderDate, "date", "d", "today", "today, last_sunday, next_sunday or YYYY-MM-DD")
	renderCmd.PersistentFlags().StringVarP(&renderShow, "show", "s", "", "Comma separated list of fields or banner elements")
	renderBannerCmd.Flags().StringVar(&renderStyle, "style", "", "Banner style: simple, elegant, modern or compact")
}
