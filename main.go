package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/coopfin/coophub/controllers"
	"github.com/coopfin/coophub/db"
	"github.com/coopfin/coophub/db/migrations"
	"github.com/coopfin/coophub/lib"
	"github.com/coopfin/coophub/lib/audit"
	"github.com/coopfin/coophub/lib/middlewares"
	"github.com/coopfin/coophub/lib/service"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/uptrace/bun/migrate"
)

func main() {

	c := &service.Config{}

	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configured log file
	logger := lib.Logger(c.LogFilePath)

	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	// Migrate the DB
	startupCtx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(startupCtx)
	if err != nil {
		logger.Fatalf("Error initializing db migrator: %v", err)
	}
	_, err = migrator.Migrate(startupCtx)
	if err != nil {
		logger.Fatalf("Error migrating database: %v", err)
	}

	// Setup exception tracking with Sentry if configured
	// sentry init needs to happen before the echo middlewares are added
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			IgnoreErrors:     []string{"401"},
			EnableTracing:    c.SentryTracesSampleRate > 0,
			TracesSampleRate: c.SentryTracesSampleRate,
		}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
	}

	// If no RABBITMQ_URI was provided audit events are dropped.
	var auditSink audit.Sink = audit.NopSink{}
	if c.RabbitMQUri != "" {
		amqpSink, err := audit.DialAMQPSink(c.RabbitMQUri, c.RabbitMQAuditExchange)
		if err != nil {
			logger.Fatalf("Error connecting audit sink: %v", err)
		}
		defer amqpSink.Close()
		auditSink = amqpSink
		logger.Infof("Audit events published to exchange %s", c.RabbitMQAuditExchange)
	}

	svc := &service.CoophubService{
		Config:    c,
		DB:        dbConn,
		Logger:    logger,
		AuditSink: auditSink,
	}

	e := initEcho(c, logger)
	e.Use(createLoggingMiddleware(logger))

	strictRateLimitMiddleware := createRateLimitMiddleware(c.StrictRateLimit, c.BurstRateLimit)
	secured := e.Group("", middlewares.Authorized(c.JWTSecret))

	getInfoCtrl := controllers.NewGetInfoController(svc)
	e.GET("/info", getInfoCtrl.GetInfo)
	e.GET("/health", getInfoCtrl.Health)
	e.POST("/auth", controllers.NewAuthController(svc).Auth, strictRateLimitMiddleware)
	e.POST("/users", controllers.NewCreateUserController(svc).CreateUser, strictRateLimitMiddleware)

	membersCtrl := controllers.NewMembersController(svc)
	secured.POST("/members", membersCtrl.Create)
	secured.GET("/members", membersCtrl.List)
	secured.GET("/members/:id", membersCtrl.Get)
	secured.PUT("/members/:id", membersCtrl.Update)
	secured.DELETE("/members/:id", membersCtrl.Deactivate)

	accountsCtrl := controllers.NewAccountsController(svc)
	secured.POST("/accounts", accountsCtrl.Create)
	secured.GET("/accounts", accountsCtrl.List)
	secured.GET("/accounts/:id", accountsCtrl.Get)
	secured.GET("/accounts/:id/ledger", accountsCtrl.Ledger)
	secured.GET("/accounts/:id/reconcile", accountsCtrl.Reconcile)
	secured.POST("/accounts/:id/active", accountsCtrl.SetActive)

	obligationsCtrl := controllers.NewObligationsController(svc)
	secured.POST("/obligations", obligationsCtrl.Create)
	secured.POST("/obligations/generate", obligationsCtrl.Generate)
	secured.GET("/members/:id/obligations", obligationsCtrl.ListForMember)
	secured.POST("/obligations/:id/cancel", obligationsCtrl.Cancel)
	secured.GET("/obligations/:id/payments", obligationsCtrl.Payments)

	secured.POST("/allocations", controllers.NewAllocateController(svc).Allocate, strictRateLimitMiddleware)

	transferCtrl := controllers.NewTransferController(svc)
	secured.POST("/transfers", transferCtrl.Transfer, strictRateLimitMiddleware)
	secured.GET("/transfers", transferCtrl.List)

	ledgerCtrl := controllers.NewLedgerController(svc)
	secured.POST("/ledger/:id/description", ledgerCtrl.UpdateDescription)
	secured.DELETE("/ledger/:id", ledgerCtrl.Delete)
	secured.POST("/adjustments", ledgerCtrl.Adjust)

	paymentsCtrl := controllers.NewPaymentsController(svc)
	secured.GET("/payments/:id", paymentsCtrl.Get)
	secured.POST("/payments/:id/receipt", paymentsCtrl.AttachReceipt)

	// Start Prometheus server if enabled
	if c.EnablePrometheus {
		go startPrometheusEcho(logger, c, e)
	}

	// Start server
	go func() {
		if err := e.Start(fmt.Sprintf(":%v", c.Port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
