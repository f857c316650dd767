// Package cmd implements the subctl command surface.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moguard/subctl/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "subctl",
	Short: "Multi-instance subscription panel manager",
	Long: `Subctl manages isolated subscription instances of the MoGuard panel on a
single host: each instance gets its own directory (a git clone of a chosen
branch), its own Postgres role and database, a rendered .env file, and a
systemd service with an append-only log.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// assumeYes skips every confirmation prompt when set via --yes.
var assumeYes bool

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "",
		fmt.Sprintf("config file (default is %s)", config.ConfigFile()))
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/subctl")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SUBCTL")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SUBCTL_DATABASE_ADMIN_DSN for database.admin_dsn
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
