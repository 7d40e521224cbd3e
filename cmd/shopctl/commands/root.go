package commands

import (
	"fmt"
	"log/slog"
	"os"

	"perfumeshop/internal/config"
	"perfumeshop/internal/infra/db"
	"perfumeshop/internal/infra/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	envFile string
	dbURL   string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "perfume shop admin tool",
	Long: `shopctl runs maintenance tasks against the shop database.

Commands:
  migrate      - create or update tables
  grant-admin  - give a registered user the ADMIN role
  seed         - insert sample brands, types and products`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load (missing file is ignored)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database URL (defaults to DATABASE_URL / POSTGRES_*)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(migrateCmd, grantAdminCmd, seedCmd)
}

func newLogger() *slog.Logger {
	if verbose {
		return logging.New("debug")
	}
	return logging.New("info")
}

// --db が無ければ環境変数から
func openDB() (*gorm.DB, error) {
	_ = godotenv.Load(envFile)

	dsn := dbURL
	if dsn == "" {
		cfg, err := config.LoadDatabase()
		if err != nil {
			return nil, err
		}
		dsn = cfg.DSN()
	}
	return db.Connect(dsn)
}
