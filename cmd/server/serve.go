package main

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-service/internal/config"
	"cafe-service/internal/controllers/http"
	mmysql "cafe-service/internal/infra/mysql"
	"cafe-service/internal/infra/rabbitmq"
	redisinfra "cafe-service/internal/infra/redis"
	mysqlrepo "cafe-service/internal/repository/mysql"
	"cafe-service/internal/security"
	"cafe-service/internal/services"
	"cafe-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mmysql.InitSchema(ctx, db); err != nil {
		return err
	}
	log.Info("tables ready", "database", cfg.DB.Name)

	users := mysqlrepo.NewUserRepository(db)
	orders := mysqlrepo.NewOrderRepository(db)

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Warn("order events disabled", "error", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	orderSvc := services.NewOrderService(users, orders, publisher, log)
	if cfg.Redis.Addr != "" {
		rdb, err := redisinfra.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("order history cache disabled", "error", err)
		} else {
			defer rdb.Close()
			orderSvc.SetCache(redisinfra.NewOrderCache(rdb, cfg.Redis.OrderTTL))
		}
	}
	authSvc := services.NewAuthService(users, security.NewBcryptHasher(cfg.App.BcryptCost), log)

	gin.SetMode(gin.ReleaseMode)
	handler := http.NewHandler(authSvc, orderSvc, log)
	srv := &nethttp.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      http.NewRouter(handler, cfg.App.AllowedOrigins(), log),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting cafe api", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err = g.Wait()

	// Deferred publisher Close runs after this, so queued events go out first.
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if derr := orderSvc.Drain(drainCtx); derr != nil {
		log.Warn("order events still pending at shutdown", "error", derr)
	}
	return err
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	if err := mmysql.InitSchema(cmd.Context(), db); err != nil {
		return err
	}
	log.Info("tables ready", "database", cfg.DB.Name)
	return nil
}

func bootstrap() (config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	log := util.NewLogger(cfg.App.LogLevel)

	db, err := mmysql.NewMySQL(cfg.DB, log)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, log, db, nil
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	if err := mmysql.Close(db); err != nil {
		log.Warn("close database", "error", err)
	}
}
