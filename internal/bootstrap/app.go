package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DragX-cyber/Legal-Mate/internal/analysis"
	googleauth "github.com/DragX-cyber/Legal-Mate/internal/auth"
	"github.com/DragX-cyber/Legal-Mate/internal/chat"
	"github.com/DragX-cyber/Legal-Mate/internal/contracts"
	"github.com/DragX-cyber/Legal-Mate/internal/llm"
	"github.com/DragX-cyber/Legal-Mate/internal/llm/gemini"
	"github.com/DragX-cyber/Legal-Mate/internal/sessions"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/config"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/server"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/storage/db"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/storage/object"
	localstore "github.com/DragX-cyber/Legal-Mate/internal/shared/storage/object/local"
	s3store "github.com/DragX-cyber/Legal-Mate/internal/shared/storage/object/s3"
	"github.com/DragX-cyber/Legal-Mate/internal/users"
)

// App holds the wired dependencies for one process.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	LLM    llm.Client

	SessionsRepo sessions.Repo
	UsersRepo    users.Repo

	SessionsService *sessions.Service
	UsersService    *users.Service
	Compiler        *analysis.Compiler
	Assembler       *chat.Assembler

	ContractsHandler *contracts.Handler
	SessionsHandler  *sessions.Handler
	ChatHandler      *chat.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
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

	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		LLM:    llmClient,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		ContractsHandler: app.ContractsHandler,
		SessionsHandler:  app.SessionsHandler,
		ChatHandler:      app.ChatHandler,
		UsersHandler:     app.UsersHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider == "gemini" {
		client, err := gemini.NewClient(ctx, os.Getenv("GEMINI_API_KEY"), cfg.LLMModel)
		if err != nil {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: gemini client unavailable; using placeholder: %v", err)
				return llm.PlaceholderClient{}, nil
			}
			return nil, err
		}
		return client, nil
	}
	return llm.PlaceholderClient{}, nil
}

func buildServices(app *App) {
	var sessionsRepo sessions.Repo
	var usersRepo users.Repo
	if app.DB != nil {
		sessionsRepo = sessions.NewPGRepo(app.DB)
		usersRepo = users.NewPGRepo(app.DB)
	} else {
		sessionsRepo = sessions.NewMemoryRepo()
		usersRepo = users.NewMemoryRepo()
	}

	cfg := app.Config
	sessionsSvc := sessions.NewService(sessionsRepo, app.Store)
	usersSvc := users.NewService(usersRepo)

	compiler := analysis.NewCompiler(app.LLM, cfg.MaxContractChars, cfg.LLMMaxRetries, cfg.LLMRetryBaseDelay)
	assembler := chat.NewAssembler(app.LLM, sessionsSvc, cfg.ChatHistoryWindow, cfg.MaxContractChars, cfg.LLMMaxRetries, cfg.LLMRetryBaseDelay)

	app.SessionsRepo = sessionsRepo
	app.UsersRepo = usersRepo
	app.SessionsService = sessionsSvc
	app.UsersService = usersSvc
	app.Compiler = compiler
	app.Assembler = assembler

	app.ContractsHandler = contracts.NewHandler(compiler, sessionsSvc)
	app.SessionsHandler = sessions.NewHandler(sessionsSvc)
	app.ChatHandler = chat.NewHandler(assembler)
	app.UsersHandler = users.NewHandler(usersSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		usersSvc,
	)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
