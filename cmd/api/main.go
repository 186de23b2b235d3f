package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/api"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/api/handler"
	custommiddleware "github.com/sanosuguru/go-bus-seat-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/application"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/config"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-bus-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/worker"
)

const (
	availabilityRefreshInterval = 1 * time.Minute
	availabilityCacheTTL        = 90 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger(cfg.Env)
	logger.Set(log)
	defer logger.Sync()

	logger.Info("バス座席予約サービスを起動します", zap.String("env", cfg.Env))

	// メトリクス初期化
	m := metrics.Init()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーション実行に失敗", zap.Error(err))
	}

	// シードデータ投入（DB_SEED=true の場合のみ）
	if cfg.Seed {
		if err := postgres.NewSeeder(db).Seed(context.Background()); err != nil {
			logger.Fatal("シードデータ投入に失敗", zap.Error(err))
		}
	}

	// Redis接続（空席数キャッシュ用、接続失敗時はキャッシュなしで継続）
	var cache application.AvailabilityCache
	redisClient := redisinfra.NewClient(&cfg.Redis)
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		logger.Warn("Redis接続に失敗、空席数キャッシュなしで継続します", zap.Error(err))
		redisClient = nil
	} else {
		cache = redisinfra.NewAvailabilityCache(redisClient)
	}

	// RabbitMQ接続（URLが設定されている場合のみ）
	var publisher application.BookingEventPublisher
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ)
		if err != nil {
			logger.Warn("RabbitMQ接続に失敗、イベント発行なしで継続します", zap.Error(err))
		} else {
			publisher = p
			defer p.Close()
		}
	}

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	seatRepo := postgres.NewSeatRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	busRepo := postgres.NewBusRepository(db)
	routeRepo := postgres.NewRouteRepository(db)

	// サービス
	evaluator := booking.NewService()
	bookingService := application.NewBookingService(
		txManager, seatRepo, passengerRepo, ticketRepo, scheduleRepo, busRepo,
		evaluator, cache, publisher, m,
	)
	searchService := application.NewSearchService(scheduleRepo, busRepo, seatRepo, cache, m)
	scheduleService := application.NewScheduleService(txManager, scheduleRepo, busRepo, routeRepo, seatRepo)

	// 空席数リフレッシャー（キャッシュがある場合のみ）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var refresher *worker.AvailabilityRefresher
	if cache != nil {
		refresher = worker.NewAvailabilityRefresher(
			scheduleRepo, seatRepo, cache,
			availabilityRefreshInterval, availabilityCacheTTL,
		)
		go refresher.Start(ctx)
	}

	// Echoセットアップ
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Validator = api.NewValidator()
	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	bookingHandler := handler.NewBookingHandler(bookingService)
	searchHandler := handler.NewSearchHandler(searchService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/bookings", bookingHandler.Book)
	v1.GET("/tickets/:reference", bookingHandler.GetTicket)
	v1.POST("/tickets/:reference/cancel", bookingHandler.CancelTicket)
	v1.GET("/passengers/:id/tickets", bookingHandler.ListPassengerTickets)

	v1.GET("/search", searchHandler.Search)
	v1.GET("/schedules/:id/summary", searchHandler.GetByScheduleID)
	v1.GET("/schedules/:id/seats", bookingHandler.GetSeatPlan)

	v1.POST("/routes", scheduleHandler.CreateRoute)
	v1.GET("/routes", scheduleHandler.ListRoutes)
	v1.POST("/buses", scheduleHandler.CreateBus)
	v1.GET("/buses", scheduleHandler.ListBuses)
	v1.POST("/schedules", scheduleHandler.CreateSchedule)
	v1.GET("/schedules/:id", scheduleHandler.GetSchedule)

	// メトリクスエンドポイント（Basic認証は環境変数設定時のみ有効）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動に失敗", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動完了", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています")

	cancel()
	if refresher != nil {
		refresher.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンに失敗", zap.Error(err))
	}

	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
