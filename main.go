package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatepass/config"
	"gatepass/cron"
	"gatepass/database"
	auditRepoPkg "gatepass/database/repository/audit"
	deviceRepoPkg "gatepass/database/repository/device"
	eventRepoPkg "gatepass/database/repository/event"
	ticketRepoPkg "gatepass/database/repository/ticket"
	userRepoPkg "gatepass/database/repository/user"
	"gatepass/handlers"
	"gatepass/middleware"
	"gatepass/routes"
	"gatepass/services/checkin"
	"gatepass/services/notification"
	"gatepass/services/ticket"
	"gatepass/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	eventRepo := eventRepoPkg.NewMongoEventRepo()
	ticketRepo := ticketRepoPkg.NewMongoTicketRepo()
	deviceRepo := deviceRepoPkg.NewMongoDeviceRepo()
	auditRepo := auditRepoPkg.NewMongoAuditRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// services.
	notificationService, err := notification.NewDefaultNotificationService(deviceRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	kvStore := checkin.NewRedisKVStore(utils.GetCacheClient())
	codec := checkin.NewCodec(checkin.Config{
		Secret:            []byte(config.AppConfig.TokenSecret),
		ValiditySeconds:   config.AppConfig.TokenValiditySecs,
		GraceSeconds:      config.AppConfig.TokenGraceSecs,
		MaxIssuePerMinute: config.AppConfig.MaxQRPerMinute,
		MaxScansPerMinute: config.AppConfig.MaxScansPerMinute,
	}, kvStore)
	validator := checkin.NewValidator(userRepo, ticketRepo)

	checkInService := checkin.NewDefaultCheckInService(
		codec,
		validator,
		ticketRepo,
		eventRepo,
		deviceRepo,
		userRepo,
		auditRepo,
		notificationService,
	)

	ticketService := &ticket.DefaultTicketService{
		Events:       eventRepo,
		Tickets:      ticketRepo,
		Devices:      deviceRepo,
		Users:        userRepo,
		Audit:        auditRepo,
		Hasher:       checkin.NewFingerprintHasher([]byte(config.AppConfig.TokenSecret)),
		Queue:        cron.NewQueueClient(),
		ReminderLead: time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute,
	}

	// Background reminder worker.
	cron.InitReminderWorker(notificationService)

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		UserRepo: userRepo,
		Auth:     handlers.NewAuthHandler(userRepo),
		Ticket:   handlers.NewTicketHandler(ticketService, checkInService),
		Device:   handlers.NewDeviceHandler(ticketService),
		CheckIn:  handlers.NewCheckInHandler(checkInService, ticketService),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
