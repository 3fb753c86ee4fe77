// logs.go — The logs command: print or follow the node log.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"
)

func newLogsCmd(configPath *string) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the node's log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.LogFilePath == "" {
				return fmt.Errorf("no log_file_path configured")
			}
			if !follow {
				f, err := os.Open(cfg.LogFilePath)
				if err != nil {
					return err
				}
				defer f.Close()
				_, err = io.Copy(cmd.OutOrStdout(), f)
				return err
			}
			t, err := tail.TailFile(cfg.LogFilePath, tail.Config{
				Follow: true,
				ReOpen: true,
			})
			if err != nil {
				return err
			}
			for line := range t.Lines {
				if line.Err != nil {
					return line.Err
				}
				fmt.Fprintln(cmd.OutOrStdout(), line.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "follow the log as it grows")
	return cmd
}
