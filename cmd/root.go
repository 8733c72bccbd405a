package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobcompass"
)

type Config struct {
	DatabaseURL string          `mapstructure:"database-url"`
	UserAgent   string          `mapstructure:"user-agent"`
	HH          *HHConfig       `mapstructure:"hh"`
	Telegram    *TelegramConfig `mapstructure:"telegram"`
	Digest      *DigestConfig   `mapstructure:"digest"`
	Search      *SearchConfig   `mapstructure:"search"`
	AI          *AIConfig       `mapstructure:"ai"`
}

type HHConfig struct {
	TokenFile string `mapstructure:"token-file"`
}

type TelegramConfig struct {
	TokenFile string `mapstructure:"token-file"`
}

type DigestConfig struct {
	// Schedule is a cron expression. The default dispatches every morning.
	Schedule string `mapstructure:"schedule"`
	Limit    int    `mapstructure:"limit"`
}

type SearchConfig struct {
	PageSize int `mapstructure:"page-size"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobcompass delivers fresh hh.ru vacancies to job seekers and tracks what they have already seen",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("database-url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("telegram.token-file", "TELEGRAM_TOKEN_FILE"); err != nil {
		log.Fatalf("binding TELEGRAM_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("hh.token-file", "HH_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HH_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobcompass.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
