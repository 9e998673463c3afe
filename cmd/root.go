package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/matchscope/matchscope/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	                 _       _
	 _ __ ___   __ _| |_ ___| |__  ___  ___ ___  _ __   ___
	| '_ ` + "`" + ` _ \ / _` + "`" + ` | __/ __| '_ \/ __|/ __/ _ \| '_ \ / _ \
	| | | | | | (_| | || (__| | | \__ \ (_| (_) | |_) |  __/
	|_| |_| |_|\__,_|\__\___|_| |_|___/\___\___/| .__/ \___|
	                                            |_|
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "matchscope",
	Short: "Match-list change detection and notification for referee assignments.",
	Long: LOGO + `matchscope polls an upstream match-list service, detects what changed since
the last snapshot, categorizes and prioritizes every change, and fans the
results out to notification channels, generated group assets and the durable
change log.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.matchscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".matchscope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.matchscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("upstream.url", "")
	viper.SetDefault("data.dir", "")
	viper.SetDefault("avatar.url", "")
	viper.SetDefault("drive.url", "")
	viper.SetDefault("phonebook.url", "")
	viper.SetDefault("discord.token", "")
	viper.SetDefault("discord.channel", "")
	viper.SetDefault("webhook.url", "")
	viper.SetDefault("assets.folder_base", "WhatsApp_Group_Assets")
	viper.SetDefault("assets.match_facts_base", "")
	viper.SetDefault("assets.min_referees", 1)

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
