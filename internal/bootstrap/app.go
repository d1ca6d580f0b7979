// Package bootstrap wires configuration into repositories, services,
// handlers and the HTTP router.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/chat"
	"docchat-backend/internal/documents"
	"docchat-backend/internal/extract"
	"docchat-backend/internal/extract/ocr/tesseract"
	"docchat-backend/internal/extract/raster"
	"docchat-backend/internal/llm"
	"docchat-backend/internal/llm/gemini"
	"docchat-backend/internal/llm/openai"
	"docchat-backend/internal/retrieval"
	"docchat-backend/internal/services/health"
	"docchat-backend/internal/shared/auth"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/server"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/storage/db"
	"docchat-backend/internal/shared/storage/object"
	localstore "docchat-backend/internal/shared/storage/object/local"
	s3store "docchat-backend/internal/shared/storage/object/s3"
	"docchat-backend/internal/shared/telemetry"
	"docchat-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Completer llm.Completer
	Signer    *auth.Signer

	DocumentsService *documents.Service
	ChatService      *chat.Service
	UsersService     *users.Service
	Health           *health.Service
}

// Build prepares every dependency and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	completer, err := buildCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.Env)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Completer: completer,
		Signer:    signer,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Verifier:        signer,
		Health:          app.Health,
		DocumentHandler: documents.NewHandler(app.DocumentsService),
		ChatHandler:     chat.NewHandler(app.ChatService),
		UserHandler:     users.NewHandler(app.UsersService),
		RateLimiter:     middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"store":        store.Name(),
		"llm_provider": completer.Name(),
		"llm_model":    completer.Model(),
		"database":     sqlDB != nil,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildCompleter picks the completion backend. A provider without an API
// key degrades to the placeholder so every chat turn reports unavailable.
func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	if cfg.LLMProvider != "none" && strings.TrimSpace(cfg.LLMAPIKey) == "" {
		telemetry.Warn("bootstrap.llm_disabled", map[string]any{"provider": cfg.LLMProvider, "reason": "missing api key"})
		return llm.PlaceholderClient{}, nil
	}
	switch cfg.LLMProvider {
	case "none":
		return llm.PlaceholderClient{}, nil
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens, float64(cfg.LLMTemperature))
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client, err := openai.NewClient(openai.Config{
			Provider:    cfg.LLMProvider,
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      cfg.LLMAPIKey,
			Model:       cfg.LLMModel,
			Timeout:     cfg.LLMTimeout,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: float64(cfg.LLMTemperature),
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func buildServices(app *App) {
	cfg := app.Config
	p := cfg.Pipeline

	var (
		docRepo  documents.Repo
		chatRepo chat.Repo
		userRepo users.Repo
	)
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		chatRepo = &chat.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		chatRepo = chat.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	renderer := raster.NewPdftoppm(cfg.PdftoppmPath)
	engine := extract.NewEngine(tesseract.New(cfg.TessdataPrefix), renderer, extract.Options{
		Language:       p.OCRLanguage,
		NativeMinChars: p.NativeMinChars,
		Raster:         raster.Options{DPI: p.OCRDPI, ScaleTo: raster.DefaultOptions().ScaleTo, Format: "png"},
	})

	app.DocumentsService = &documents.Service{
		Repo:              docRepo,
		Store:             app.Store,
		Extractor:         engine,
		Summarizer:        retrieval.NewSummarizer(p.SummarySentences),
		Messages:          chatRepo,
		ExtractionTimeout: cfg.ExtractionTimeout,
		OCRLanguage:       p.OCRLanguage,
	}
	app.ChatService = &chat.Service{
		Repo:            chatRepo,
		Documents:       app.DocumentsService,
		Completer:       app.Completer,
		Ranker:          retrieval.Ranker{ChunkSize: p.ChunkSize, ChunkOverlap: p.ChunkOverlap, TopK: p.TopK},
		MaxContextChars: p.MaxContextChars,
		HistoryLimit:    p.HistoryLimit,
	}
	app.UsersService = users.NewService(userRepo, app.Signer, app.DocumentsService)
	app.Health = health.NewService(readinessChecks(app, renderer)...)
}

func readinessChecks(app *App, renderer *raster.Pdftoppm) []health.Check {
	checks := []health.Check{
		{Name: "object_store", Probe: app.Store.Ping},
		{Name: "pdftoppm", Probe: func(context.Context) error { return renderer.Available() }},
	}
	if app.DB != nil {
		checks = append(checks, health.Check{Name: "database", Probe: app.DB.PingContext})
	}
	return checks
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
