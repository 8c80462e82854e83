package bootstrap

import (
	"context"
	"log"

	"docvault-be/internal/config"
	"docvault-be/internal/controller"
	"docvault-be/internal/pkg/logger"
	"docvault-be/internal/pkg/mailer"
	"docvault-be/internal/repository/unitofwork"
	"docvault-be/internal/service"
	"docvault-be/pkg/crypto"
	"docvault-be/pkg/embedding"
	"docvault-be/pkg/extractor"
	"docvault-be/pkg/llm/factory"
	pkgNats "docvault-be/pkg/nats"
	"docvault-be/pkg/rag"
	"docvault-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController
	FeedbackController controller.IFeedbackController

	// Used by the server for identity resolution
	UserService service.IUserService
	Logger      logger.ILogger

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	natsPublisher *pkgNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	vault, err := crypto.NewAesGcmVault(cfg.Crypto.MasterKey)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize crypto vault: %v", err)
	}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.Sender,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.GeminiApiKey,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	objectStore, err := storage.NewMinioStore(context.Background(), storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize object storage: %v", err)
	}

	var ocrClient extractor.OCRClient
	if cfg.Ai.OcrURL != "" {
		ocrClient = extractor.NewHTTPOCRClient(cfg.Ai.OcrURL)
		log.Printf("[INFO] OCR fallback enabled (%s)", cfg.Ai.OcrURL)
	}
	textExtractor := extractor.New(ocrClient)

	var natsPub *pkgNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pkgNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	retriever := rag.NewRetriever(
		embeddingProvider,
		&rag.RepositorySearcher{UowFactory: uowFactory},
		vault,
		rdb,
		sysLogger,
	)

	// 5. Services
	auditService := service.NewAuditService(uowFactory, sysLogger)
	userService := service.NewUserService(uowFactory, vault, sysLogger)
	publisherService := service.NewPublisherService(pubSub, cfg.App.FeedbackTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		uowFactory,
		vault,
		emailService,
		sysLogger,
		cfg.App.FeedbackTopic,
		cfg.App.FeedbackEmail,
	)

	documentService := service.NewDocumentService(
		uowFactory,
		vault,
		textExtractor,
		objectStore,
		embeddingProvider,
		auditService,
		natsPub,
		sysLogger,
		cfg.Ingest,
		cfg.Storage.Bucket,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.EmbeddingDimension,
	)

	chatService := service.NewChatService(
		uowFactory,
		retriever,
		llmProvider,
		vault,
		auditService,
		sysLogger,
		cfg.Ingest,
		cfg.Ai.LLMModel,
	)

	feedbackService := service.NewFeedbackService(
		uowFactory,
		vault,
		publisherService,
		auditService,
		natsPub,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		ChatController:     controller.NewChatController(chatService),
		FeedbackController: controller.NewFeedbackController(feedbackService),

		UserService: userService,
		Logger:      sysLogger,

		ConsumerService: consumerService,

		natsPublisher: natsPub,
	}
}

// Close releases long lived connections. Called on shutdown.
func (c *Container) Close() {
	if c.natsPublisher != nil {
		c.natsPublisher.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
