package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/progress"
)

func newProgressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show your activity and achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.out.Progress(progress.Load(cmd.Context(), a.gateway))
			return nil
		},
	}
}
