package commands

import (
	"perfumeshop/internal/infra/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		gdb, err := openDB()
		if err != nil {
			return err
		}
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		log.Info("migrate done", "tables", len(db.Models()))
		return nil
	},
}
