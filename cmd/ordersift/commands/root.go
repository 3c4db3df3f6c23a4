// Package commands implements the CLI commands for ordersift.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ordersift",
	Short: "Extract purchase orders from vendor notification emails",
	Long: `Ordersift pulls vendor PO notification emails, extracts order and
customer records from their nested-table HTML, and upserts them into a
local SQLite database. Re-running is safe: extraction is keyed by natural
keys and already-processed messages are skipped.

Examples:
  # Process unread notifications from Gmail into the store
  ordersift run --credentials credentials.json --token token.json --db orders.db

  # Reprocess archived messages from a folder
  ordersift run --source dir --maildir ./archive --db orders.db

  # One-shot extraction of a local file to stdout
  ordersift extract notification.html

  # Dump the store to a spreadsheet
  ordersift export --db orders.db -o orders.xlsx`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.ordersift.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().String("db", "orders.db", "path to the SQLite database")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".ordersift")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("ORDERSIFT")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
