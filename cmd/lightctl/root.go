package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var urlFlag string
	var configFlag string
	var logLevelFlag string

	ctx := newCommandContext(&urlFlag, &configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "lightctl",
		Short:         "Control Elgato lights through Control Center",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&urlFlag, "url", "u", "", "Control Center URL (default ws://127.0.0.1:1804/)")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newDevicesCommand(ctx))
	for _, cmd := range newLightCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newSimulateCommand(ctx))

	return rootCmd
}
