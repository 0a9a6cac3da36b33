package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hypermaq/stationdb"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "stationdb",
	Short: "manage a station database file",
	Long: fmt.Sprintf(`stationdb (v%s)

Operates the SQLite database of a measurement station: settings, the task
queue, logs, the measurement protocol and selective exports.`, version),
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stationdb",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stationdb v%s\n", version)
	},
}

func init() {
	// .env files are optional; environment variables win
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("stationdb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("db", "", "path to the station database file (env: STATIONDB_DB)")
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(
		versionCmd,
		initCmd,
		settingCmd,
		queueCmd,
		logCmd,
		protocolCmd,
		exportCmd,
		vacuumCmd,
	)
}

// openDB connects to the database named by --db or STATIONDB_DB.
func openDB() (*stationdb.Database, error) {
	path := viper.GetString("db")
	if path == "" {
		return nil, fmt.Errorf("no database given, use --db or STATIONDB_DB")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database %s does not exist, create it with 'stationdb init'", path)
	}
	return stationdb.Connect(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
