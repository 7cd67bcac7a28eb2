package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the API response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached API response",
	Long: `Delete every cached calendar day and option list. Run this when the
service is retired or after changing the API base URL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, cleanup, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := a.Client.ClearCache(ctx)
		if err != nil {
			return logFatal(a, "cache clear failed", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached entries\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
