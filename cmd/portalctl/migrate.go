package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := openDatabase()
		if err != nil {
			return err
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Schema is up to date (%s)", cfg.Database.Driver)))
		return nil
	},
}
