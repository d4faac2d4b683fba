package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"io"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tips-content-service/internal/auth"
	"tips-content-service/internal/config"
	"tips-content-service/internal/constants"
	"tips-content-service/internal/content"
	"tips-content-service/internal/database"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/ingest"
	"tips-content-service/internal/lint"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/middlewares"
	"tips-content-service/internal/routes"
	"tips-content-service/internal/source"
)

func main() {
	c := config.InitConfig()

	logger := logging.InitLogging(c)

	if len(c.Auth.SigningKey) > 0 {
		middlewares.SigningKey = c.Auth.SigningKey
	}

	controllerRegistry, env, err := injectDependencies(c, logger)
	if err != nil {
		logger.LogErrorf(nil, "injecting dependencies failed: %s", err.Error())
		return
	}

	ginLogger := logging.InitGinLogger(c)

	gin.DefaultWriter = io.MultiWriter(&zapio.Writer{Log: ginLogger, Level: config.Config().Logging.Level})
	if config.Config().Logging.Level == zap.DebugLevel {
		logger.LogDebug(nil, "Enabling Gin debug (writes to access log)")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		ginzap.GinzapWithConfig(ginLogger, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        false,
			SkipPaths:  []string{"/status"},
		}),
		ginzap.RecoveryWithZap(ginLogger, true),
	)

	// Routes
	routes.InitRouter(r, controllerRegistry)

	ctx, cancel := context.WithCancel(context.Background())
	SetupCloseHandler(logger, cancel)

	ingestApi := controllerRegistry[constants.Ingest].(ingest.Api)
	go func() {
		// sync the corpus on startup
		syncCtx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ingestApi.SyncDocuments(syncCtx)
	}()

	if config.Config().Content.Watch && config.ContentSource() == source.Filesystem {
		watcher := &source.Watcher{
			Env:      env,
			Root:     config.ContentDir(),
			Debounce: config.Config().Content.WatchDebounce.Duration,
			OnChange: func() {
				syncCtx, _ := gin.CreateTestContext(httptest.NewRecorder())
				ingestApi.SyncDocuments(syncCtx)
			},
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.LogErrorf(logging.GetLogTypeWatcher(), "content watcher stopped: %s", err.Error())
			}
		}()
	}

	if len(config.Config().ListeningAddress) == 0 && len(config.Config().ListeningPort) == 0 {
		panic("No listening address/port provided")
	}

	logger.LogInfof(nil, "API running. Listening on %s:%s", config.Address(), config.Port())

	err = r.Run(config.Address() + ":" + config.Port())
	if err != nil {
		logger.LogErrorf(nil, "Listening on %s:%s failed: %s", config.Address(), config.Port(), err.Error())
		return
	}
}

func injectDependencies(config *config.Configuration, logger logging.Logger) (map[int]any, *environment.Env, error) {
	db, err := database.InitDatabase(config, logger)
	if err != nil {
		logger.LogError(nil, "error initializing database: ", err)
		return nil, nil, err
	}

	env := environment.Environment(
		&database.GormRepository{DB: db},
		logger,
	)

	var contentSource source.ContentSource
	switch config.Content.Source {
	case source.Filesystem:
		contentSource = &source.FilesystemSource{Env: env, Root: config.Content.Dir}
	case source.Bitbucket:
		contentSource, err = source.InitBitbucket(config, env)
		if err != nil {
			logger.LogErrorf(logging.GetLogTypeInitialization(), "Error initializing Bitbucket Api: %v", err)
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unknown content source %q (expected %q or %q)", config.Content.Source, source.Filesystem, source.Bitbucket)
	}

	linter := lint.Linter{Env: env, Sidenavs: config.Content.Sidenavs}

	ingestController := &ingest.Controller{
		Env:                 env,
		ContentSource:       contentSource,
		DocumentHousekeeper: &ingest.DefaultDocumentHousekeeper{Env: env},
		DocumentParser:      ingest.DocumentParser{Env: env, DefaultExcerptSeparator: config.Content.DefaultExcerptSeparator},
		Linter:              linter,
	}

	// the Collator is used for lexicographic order with locale-aware sorting (like filesystems do),
	// instead of Go's default pure Unicode code point ordering
	c := collate.New(language.English, collate.Numeric, collate.IgnoreCase)
	contentController := &content.Controller{
		Env:                       env,
		NavigationTreeService:     content.NavigationTreeService{Env: env, Collator: c},
		DocumentSearchMatchMapper: content.DocumentSearchMatchMapper{Env: env},
	}

	lintController := &lint.Controller{
		Env:    env,
		Linter: linter,
	}

	authController := &auth.Controller{
		Env:         env,
		AuthService: &auth.AuthService{Env: env},
	}

	controllerRegistry := make(map[int]any)
	controllerRegistry[constants.Content] = contentController
	controllerRegistry[constants.Ingest] = ingestController
	controllerRegistry[constants.Lint] = lintController
	controllerRegistry[constants.Auth] = authController

	return controllerRegistry, env, nil
}

func SetupCloseHandler(logger logging.Logger, cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-c
		fmt.Println()
		logger.LogWarnf(nil, "Cleaning up...")
		cancel()
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}()
}
