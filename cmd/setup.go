package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"jobcompass/internal/digest"
	"jobcompass/internal/docgen"
	"jobcompass/internal/headhunter"
	"jobcompass/internal/logger"
	"jobcompass/internal/reconcile"
	"jobcompass/internal/search"
	"jobcompass/internal/secrets"
	"jobcompass/internal/storage/postgres"
	"jobcompass/internal/telegram"
)

// services holds everything a command needs after bootstrap.
type services struct {
	logger     *zap.Logger
	config     *Config
	pool       *pgxpool.Pool
	store      *postgres.Store
	notifier   *telegram.Notifier
	dispatcher *digest.Dispatcher
	flow       *search.Flow
}

func (s *services) close() {
	s.pool.Close()
}

// bootstrap builds the full service graph: logger, config, database,
// upstream clients and the digest and search pipelines.
func bootstrap(ctx context.Context) *services {
	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		zlog.Fatal("config is required")
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zlog.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config.DatabaseURL == "" {
		zlog.Fatal("database url is required",
			zap.String("hint", "set DATABASE_URL environment variable or the 'database-url' key in the configuration file"),
		)
	}

	pool, err := postgres.Connect(ctx, config.DatabaseURL)
	if err != nil {
		zlog.Fatal("connecting to postgres", zap.Error(err))
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		zlog.Fatal("migrating schema", zap.Error(err))
	}

	store := postgres.NewStore(pool)

	hhToken := ""
	if config.HH != nil && config.HH.TokenFile != "" {
		hhToken, err = secrets.Load(secrets.Source{
			Name: "headhunter token",
			File: config.HH.TokenFile,
		})
		if err != nil {
			zlog.Fatal("loading headhunter token", zap.Error(err))
		}
	}

	hh := headhunter.New(ctx, zlog, hhToken)
	if config.UserAgent != "" {
		hh.UserAgent = config.UserAgent
	}

	notifier, err := newNotifier(config, zlog)
	if err != nil {
		zlog.Fatal("creating telegram notifier",
			zap.Error(err),
			zap.String("hint", "set TELEGRAM_TOKEN_FILE environment variable or the 'telegram.token-file' key in the configuration file"),
		)
	}

	reconciler := reconcile.New(zlog)
	fetcher := digest.NewVacancyFetcher(hh, zlog)

	limit := digest.DefaultLimit
	if config.Digest != nil && config.Digest.Limit > 0 {
		limit = config.Digest.Limit
	}
	pageSize := search.DefaultPageSize
	if config.Search != nil && config.Search.PageSize > 0 {
		pageSize = config.Search.PageSize
	}

	return &services{
		logger:     zlog,
		config:     config,
		pool:       pool,
		store:      store,
		notifier:   notifier,
		dispatcher: digest.NewDispatcher(store, store, fetcher, notifier, reconciler, limit, zlog),
		flow:       search.NewFlow(store, fetcher, reconciler, pageSize, zlog),
	}
}

func newNotifier(config *Config, zlog *zap.Logger) (*telegram.Notifier, error) {
	if config.Telegram == nil || strings.TrimSpace(config.Telegram.TokenFile) == "" {
		return nil, errors.New("telegram token file is not configured")
	}

	token, err := secrets.Load(secrets.Source{
		Name: "telegram token",
		File: config.Telegram.TokenFile,
	})
	if err != nil {
		return nil, err
	}

	return telegram.New(token, zlog), nil
}

// newDocGenerator picks the AI backend when one is enabled and falls back to
// static templates otherwise.
func newDocGenerator(ctx context.Context, config *Config, zlog *zap.Logger) (docgen.Generator, error) {
	if config.AI == nil || !config.AI.Enabled {
		return docgen.NewTemplateGenerator(), nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	if config.AI.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file)", err)
	}

	generator, err := docgen.NewGeminiGenerator(ctx, apiKey, config.AI.Gemini.Model)
	if err != nil {
		return nil, err
	}

	zlog.Info("using gemini for document generation", zap.String("model", generator.Model()))

	return generator, nil
}
