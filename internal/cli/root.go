package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trivia-quiz-client/internal/app"
	"trivia-quiz-client/internal/config"
	"trivia-quiz-client/internal/infra/htmltext"
	"trivia-quiz-client/internal/infra/opentdb"
	"trivia-quiz-client/internal/logger"
)

type rootOptions struct {
	configPath string
	baseURL    string
	logLevel   string
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "trivia",
		Short:         "Trivia quiz client for the Open Trivia DB",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", os.Getenv("TRIVIA_BASE_URL"), "trivia API base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", os.Getenv("LOG_LEVEL"), "log level (overrides config)")
	cmd.AddCommand(newPlayCmd(opts))
	cmd.AddCommand(newCategoriesCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// load reads the config, applies flag overrides and sets up logging.
func (o *rootOptions) load() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	if o.baseURL != "" {
		cfg.Trivia.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, logger.Setup(cfg.Log.Level, cfg.Log.Format), nil
}

func newQuizService(cfg config.Config, log zerolog.Logger) *app.QuizService {
	client := opentdb.NewClient(cfg.Trivia.BaseURL, config.TTLDuration(cfg.Trivia.Timeout, opentdb.DefaultTimeout))
	return app.NewQuizService(client, htmltext.NewDecoder(), log)
}
