package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "somewherescout"
)

type Config struct {
	Sources   []string      `mapstructure:"sources"`
	UserAgent string        `mapstructure:"user-agent"`
	Profile   string        `mapstructure:"profile"`
	Region    *RegionConfig `mapstructure:"region"`
	Scout     *ScoutConfig  `mapstructure:"scout"`
	AI        *AIConfig     `mapstructure:"ai"`
}

type RegionConfig struct {
	Keywords []string `mapstructure:"keywords"`
	Tokens   []string `mapstructure:"tokens"`
}

type ScoutConfig struct {
	MinSalary int    `mapstructure:"min-salary"`
	Currency  string `mapstructure:"currency"`
	Query     string `mapstructure:"query"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// defaultSources is the fixed set of postings scouted when the config file
// does not override it.
var defaultSources = []string{
	"https://somewhere.com/jobs/apply?slug=17484142712420072484oBV",
	"https://somewhere.com/jobs/apply?slug=17484142712420072485oBW",
	"https://somewhere.com/jobs/apply?slug=17484142712420072486oBX",
	"https://somewhere.com/jobs/apply?slug=17484142712420072487oBY",
	"https://somewhere.com/jobs/apply?slug=17484142712420072488oBZ",
	"https://somewhere.com/jobs/apply?slug=17484142712420072489oCA",
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "somewherescout scouts job postings from somewhere.com and ranks them against your profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is somewherescout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("sources", defaultSources)
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing config file is fine (built-in defaults apply), a broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return
		}
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
