package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/insightlens/insightlens/internal/ai"
	"github.com/insightlens/insightlens/internal/compare"
	"github.com/insightlens/insightlens/internal/config"
	"github.com/insightlens/insightlens/internal/embedcache"
	"github.com/insightlens/insightlens/internal/filestore"
	"github.com/insightlens/insightlens/internal/handler"
	"github.com/insightlens/insightlens/internal/job"
	"github.com/insightlens/insightlens/internal/middleware"
	"github.com/insightlens/insightlens/internal/repo"
	"github.com/insightlens/insightlens/internal/schedule"
	"github.com/insightlens/insightlens/internal/service"
	"github.com/insightlens/insightlens/internal/task"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "insightlens",
		Short: "insightlens document comparison server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run insightlens server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db, cfg.MigrationsDir); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sqlx.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	docRepo := repo.NewDocumentRepo(db)
	sectionRepo := repo.NewSectionRepo(db)
	cmpRepo := repo.NewComparisonRepo(db)
	jobRepo := repo.NewCompareJobRepo(db)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	aiClient := ai.NewClient(aiProvider, ai.ClientConfig{
		EmbedModel:    cfg.AI.EmbedModel,
		SummaryModel:  cfg.AI.SummaryModel,
		Timeout:       time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		MaxInputChars: cfg.AI.MaxInputChars,
	})
	embedder := embedcache.Wrap(aiClient, cfg.AI.CacheSize, time.Duration(cfg.AI.CacheTTLMin)*time.Minute)

	pool := task.NewPool(cfg.Process.Workers, cfg.Process.QueueSize)
	pool.Start()

	classifier := compare.NewClassifier(aiClient, compare.ClassifierOptions{
		MaxConcurrency: cfg.Compare.MaxConcurrency,
		RatePerSec:     cfg.Compare.RatePerSec,
		SnippetMax:     cfg.Compare.SnippetMax,
	})

	documentService := service.NewDocumentService(docRepo, sectionRepo, store, embedder, pool, cfg.Process.EmbedWorkers)
	compareService := service.NewCompareService(docRepo, sectionRepo, cmpRepo, jobRepo, classifier, cfg.Compare.Threshold, pool)

	deps := handler.RouterDeps{
		Documents: handler.NewDocumentHandler(documentService),
		Compare:   handler.NewCompareHandler(compareService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewEmbeddingBackfillJob(documentService, cfg.Jobs.BackfillBatch), cfg.Jobs.BackfillSpec); err != nil {
		return err
	}
	if err := scheduler.AddJob(job.NewCleanupJob(
		compareService,
		time.Duration(cfg.Jobs.StaleJobMinutes)*time.Minute,
		time.Duration(cfg.Jobs.RetentionDays)*24*time.Hour,
	), cfg.Jobs.CleanupSpec); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	scheduler.Stop()
	pool.Stop()
	return nil
}
