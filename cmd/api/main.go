package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/ai-interviewer/backend/internal/config"
	"github.com/zhouzirui/ai-interviewer/backend/internal/handler"
	"github.com/zhouzirui/ai-interviewer/backend/internal/logger"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/ai"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/chat"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/evaluation"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/record"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store/bolt"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store/memory"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store/postgres"
)

func main() {
	startedAt := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLog, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	aiService, err := ai.NewService(ctx, cfg.AI, nil, zapLog.Named("ai"))
	if err != nil {
		zapLog.Fatal("failed to initialize AI service", zap.Error(err))
	}
	zapLog.Info("AI service initialized",
		zap.String("default_model", cfg.AI.DefaultModel),
		zap.String("api_version", cfg.AI.APIVersion),
	)

	evalService, err := evaluation.NewService(aiService, zapLog.Named("evaluation"))
	if err != nil {
		zapLog.Fatal("failed to initialize evaluation service", zap.Error(err))
	}

	recordStore, err := openStore(ctx, cfg.Store, zapLog)
	if err != nil {
		zapLog.Fatal("failed to open record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	var recordService *record.Service
	if recordStore != nil {
		defer func() { _ = recordStore.Close() }()
		recordService = record.NewService(recordStore)
		zapLog.Info("record store ready", zap.String("driver", cfg.Store.Driver))
	} else {
		zapLog.Info("服务端记录存储已关闭，面试记录仅保存在浏览器")
	}

	router := handler.NewRouter(handler.Dependencies{
		AI:         aiService,
		Interview:  interview.NewService(aiService, zapLog.Named("interview")),
		Evaluation: evalService,
		Chat:       chat.NewService(aiService, zapLog.Named("chat")),
		Records:    recordService,
		StartedAt:  startedAt,
	}, cfg.Server, zapLog)

	startServer(ctx, cfg.Server, router, zapLog)
}

// openStore returns nil when server-side records are disabled.
func openStore(ctx context.Context, cfg config.StoreConfig, zapLog *zap.Logger) (store.RecordStore, error) {
	switch cfg.Driver {
	case config.StoreDriverBolt:
		return bolt.Open(cfg.BoltPath)
	case config.StoreDriverPostgres:
		return postgres.Connect(ctx, cfg.DatabaseURL, zapLog.Named("postgres"))
	case config.StoreDriverMemory:
		return memory.New(), nil
	default:
		return nil, nil
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, zapLog *zap.Logger) {
	addr, err := serverCfg.Addr()
	if err != nil {
		zapLog.Fatal("invalid server address", zap.Error(err))
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zapLog.Info("AI interviewer backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		zapLog.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
