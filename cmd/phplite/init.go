package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tangzhangming/phplite/internal/config"
	"github.com/tangzhangming/phplite/internal/i18n"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a " + config.FileName + " with default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.FileName)

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s", i18n.T(i18n.MsgConfigExists, path))
			}

			cfg := config.Default()
			if a.lang != "" {
				cfg.Compiler.Language = a.lang
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T(i18n.MsgConfigWritten, path))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
