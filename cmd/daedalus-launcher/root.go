// root.go — Command tree and global flags.
package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "daedalus-launcher",
		Short:         "Supervises a Cardano node process",
		Long:          "daedalus-launcher spawns the configured node binary, drives its lifecycle over the IPC channel, harvests its TLS configuration and guarantees no orphaned node is left behind.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "launcher.yaml", "path to the launcher config file")

	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newLogsCmd(&configPath))
	return root
}
