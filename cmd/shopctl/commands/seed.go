package commands

import (
	"perfumeshop/internal/infra/db"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample brands, types and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		gdb, err := openDB()
		if err != nil {
			return err
		}
		if err := db.Migrate(gdb); err != nil {
			return err
		}

		res, err := db.Seed(cmd.Context(), gdb)
		if err != nil {
			return err
		}
		log.Info("seed done", "brands", res.Brands, "types", res.Types, "products", res.Products)
		return nil
	},
}
