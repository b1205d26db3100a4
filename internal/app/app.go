// Package app собирает сервис из конфигурации: клиенты, репозитории,
// пайплайны и HTTP-доставку.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/storeline-tech/go-backend/internal/cfg"
	v1Http "github.com/storeline-tech/go-backend/internal/delivery/v1/http"
	"github.com/storeline-tech/go-backend/internal/infrastructure/embeddings"
	"github.com/storeline-tech/go-backend/internal/infrastructure/imagemodel"
	"github.com/storeline-tech/go-backend/internal/infrastructure/images"
	"github.com/storeline-tech/go-backend/internal/infrastructure/kafka"
	"github.com/storeline-tech/go-backend/internal/repository/pgdb"
	qdrantRepo "github.com/storeline-tech/go-backend/internal/repository/qdrant"
	redisRepo "github.com/storeline-tech/go-backend/internal/repository/redis"
	"github.com/storeline-tech/go-backend/internal/usecase"
	"github.com/storeline-tech/go-backend/pkg/clients"
	"github.com/storeline-tech/go-backend/pkg/closer"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/storeline-tech/go-backend/pkg/logger"
	"github.com/storeline-tech/go-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	forcedTimeout   = 15 * time.Second
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	httpSrv *v1Http.Server
	closer  *closer.Closer
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(forcedTimeout)

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), initTimeout)
	err = clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName)
	minioCancel()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return qdrantClient.Client.Close()
	})

	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), initTimeout)
	err = clients.EnsureCollections(qdrantCtx, qdrantClient)
	qdrantCancel()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = redisClient.Ping(redisCtx)
	redisCancel()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := producer.EnsureTopic(initTimeout); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	catalogRepo := pgdb.NewCatalogRepo(db.Pool)
	accountRepo := pgdb.NewAccountRepo(db.Pool)
	runLogRepo := pgdb.NewRunLogRepo(db.Pool)
	textRepo := qdrantRepo.NewTextEmbeddingRepo(qdrantClient.Client, cfg.Qdrant)
	imageRepo := qdrantRepo.NewImageEmbeddingRepo(qdrantClient.Client, cfg.Qdrant)
	cacheRepo := redisRepo.NewProductCacheRepo(redisClient, cfg.Redis, log)

	textEmbedder := embeddings.NewClient(cfg.Embedder, log)
	imageEmbedder := imagemodel.NewClient(cfg.ImageModel, log)
	fetcher := images.NewFetcher(minioClient, cfg.Minio)

	textUC := usecase.NewEmbeddingUC(
		catalogRepo,
		accountRepo,
		textRepo,
		textEmbedder,
		runLogRepo,
		producer,
		log,
		cfg.Pipeline.BatchPause,
	)

	imagesUC := usecase.NewImageEmbeddingUC(
		catalogRepo,
		accountRepo,
		imageRepo,
		fetcher,
		imageEmbedder,
		runLogRepo,
		producer,
		log,
	)

	searchUC := usecase.NewSearchUC(
		textRepo,
		imageRepo,
		cacheRepo,
		catalogRepo,
		textEmbedder,
		imageEmbedder,
		fetcher,
		log,
	)

	health := v1Http.NewHealthHandler(map[string]v1Http.Pinger{
		"postgres": pgPinger{db: db},
		"qdrant":   qdrantClient,
		"redis":    redisClient,
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(usecase.NewGenerator(textUC, imagesUC), searchUC, health)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	return &App{
		cfg:     cfg,
		logger:  log,
		httpSrv: httpSrv,
		closer:  cl,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до сигнала остановки или
// фатальной ошибки сервера, после чего закрывает зависимости в порядке LIFO.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("shutdown finished with errors: %v", err)
	}

	a.logger.Infof("Application shutdown complete")

	return appErr
}

// pgPinger адаптирует пул соединений к интерфейсу health-проверки.
type pgPinger struct {
	db *postgres.PgDatabase
}

func (p pgPinger) Ping(ctx context.Context) error {
	return p.db.Pool.Ping(ctx)
}

func initPGDB(log logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(log); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
