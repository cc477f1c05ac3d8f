package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/baileyram/somewherescout/internal/ai"
	"github.com/baileyram/somewherescout/internal/ai/gemini"
	"github.com/baileyram/somewherescout/internal/jobs"
	"github.com/baileyram/somewherescout/internal/logger"
	"github.com/baileyram/somewherescout/internal/profile"
	"github.com/baileyram/somewherescout/internal/scout"
	"github.com/baileyram/somewherescout/internal/scrape"
	"github.com/baileyram/somewherescout/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptExit            = "Exit"
	PromptReportByCompany = "Report by company"
	PromptMatchesToFile   = "Dump matches to file"

	fetchTimeout = 8 * time.Second
)

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReportByCompany, PromptMatchesToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the somewherescout main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("min-salary", "m", 0, "minimum monthly salary in the selected currency")
	runCmd.Flags().StringP("currency", "c", "USD", "currency for the salary filter and displayed salaries")
	runCmd.Flags().StringP("query", "q", "", "free-text query matched against title and description")
	runCmd.Flags().BoolP("auto-approve", "y", false, "print the report and exit without prompting")

	viper.BindPFlag("scout.min-salary", runCmd.Flags().Lookup("min-salary"))
	viper.BindPFlag("scout.currency", runCmd.Flags().Lookup("currency"))
	viper.BindPFlag("scout.query", runCmd.Flags().Lookup("query"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the somewherescout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	ranker, err := newRanker(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"building the ranking oracle",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	service := newService(config, ranker, logger)

	criteria := scout.Criteria{
		MinSalary: viper.GetInt("scout.min-salary"),
		Currency:  strings.ToUpper(viper.GetString("scout.currency")),
		Query:     viper.GetString("scout.query"),
	}

	logger.Info("starting the scout",
		zap.Int("min_salary", criteria.MinSalary),
		zap.String("currency", criteria.Currency),
		zap.String("query", criteria.Query),
	)

	matches, err := service.FetchAndRank(ctx, criteria)
	if err != nil {
		logger.Fatal("fetching and ranking postings", zap.Error(err))
	}

	if matches.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no matches after filters"))
		return
	}

	logger.Info("current list of matches", zap.Int("count", matches.Len()))

	if cmd.Flag("auto-approve").Value.String() == "true" {
		if err := handleAction(PromptReportByCompany, logger, matches); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if action == PromptExit {
			logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return
		}

		if err := handleAction(action, logger, matches); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, matches *jobs.Matches) error {
	switch action {
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(matches.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", matches.Len()))
		return nil
	case PromptMatchesToFile:
		filename, err := matches.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func newService(config *Config, ranker ai.Ranker, logger *zap.Logger) *scout.Service {
	fetcher := scrape.NewFetcher(fetchTimeout, logger)
	if config.UserAgent != "" {
		fetcher.UserAgent = config.UserAgent
	}

	var keywords, tokens []string
	if config.Region != nil {
		keywords = config.Region.Keywords
		tokens = config.Region.Tokens
	}

	aggregator := scrape.NewAggregator(
		fetcher,
		scrape.NewExtractor(logger),
		scrape.NewRegionFilter(keywords, tokens),
		logger,
	)

	profiles := profile.NewStore()
	if config.Profile != "" {
		profiles.Set(config.Profile)
	}

	return scout.New(aggregator, ranker, profiles, config.Sources, logger)
}

func newRanker(ctx context.Context, cfg *AIConfig, baseLogger *zap.Logger) (ai.Ranker, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, fmt.Errorf("ai.gemini configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	oracleLogger := logger.WithOracleFields(baseLogger, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, oracleLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewRanker(generator, cfg.Gemini.MaxLogLength, oracleLogger), nil
}
