package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/config"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write config.yaml with default values into the flagwise home directory.
An existing file is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, _ := cmd.Flags().GetString("home")
			if home == "" {
				var err error
				if home, err = config.GetHome(); err != nil {
					return err
				}
			} else if err := os.MkdirAll(home, 0700); err != nil {
				return fmt.Errorf("create flagwise home directory: %w", err)
			}

			path := config.Path(home)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			newPrinter(cmd).Success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
