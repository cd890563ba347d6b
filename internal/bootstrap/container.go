package bootstrap

import (
	"context"
	"log"

	"crowdfund-be/internal/config"
	"crowdfund-be/internal/controller"
	"crowdfund-be/internal/handler"
	"crowdfund-be/internal/pkg/logger"
	"crowdfund-be/internal/pkg/mailer"
	"crowdfund-be/internal/repository/implementation"
	"crowdfund-be/internal/repository/unitofwork"
	"crowdfund-be/internal/service"
	"crowdfund-be/internal/websocket"
	adminEvents "crowdfund-be/pkg/admin/events"
	"crowdfund-be/pkg/admin/user"
	"crowdfund-be/pkg/payment/gateway"
	"crowdfund-be/pkg/payment/lifecycle"
	"crowdfund-be/pkg/retry"

	pktNats "crowdfund-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	UserController         controller.IUserController
	ProjectController      controller.IProjectController
	ContributionController controller.IContributionController
	AdminController        controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Payment Infrastructure
	gatewayClient := gateway.NewMidtransClient(gateway.MidtransConfig{
		ServerKey:  cfg.Midtrans.ServerKey,
		Production: cfg.Midtrans.Production,
	})
	machine := lifecycle.NewMachine(uowFactory)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.FundingTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.FundingTopic,
		uowFactory,
		natsPub,
	)

	contributionService := service.NewContributionService(
		uowFactory,
		machine,
		gatewayClient,
		natsPub,
		publisherService,
		sysLogger,
		service.ContributionServiceConfig{
			GatewayServerKey: cfg.Midtrans.ServerKey,
			RetryPolicy: retry.Policy{
				MaxAttempts: cfg.Retry.MaxAttempts,
				BaseDelay:   cfg.Retry.BaseDelay,
			},
		},
	)

	projectService := service.NewProjectService(uowFactory, sysLogger)
	userService := service.NewUserService(uowFactory)

	// Admin Domain Components
	adminEventPublisher := adminEvents.NewNatsPublisher(natsPub, sysLogger)
	userManager := user.NewManager(sysLogger, adminEventPublisher)
	adminService := service.NewAdminService(uowFactory, userManager, sysLogger)

	authService := service.NewAuthService(uowFactory, adminEventPublisher)

	// 4.5 Notification System
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, emailService, wsLogger)

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, natsPub, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		NotificationHandler:    notifHandler,
		WebSocketHub:           wsHub,
		AuthController:         controller.NewAuthController(authService),
		UserController:         controller.NewUserController(userService),
		ProjectController:      controller.NewProjectController(projectService),
		ContributionController: controller.NewContributionController(contributionService),
		AdminController:        controller.NewAdminController(adminService, contributionService),

		ConsumerService: consumerService,
	}
}
