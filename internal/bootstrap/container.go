package bootstrap

import (
	"context"
	"fmt"
	"time"

	"braincells-be/internal/config"
	"braincells-be/internal/controller"
	"braincells-be/internal/pkg/logger"
	"braincells-be/internal/pkg/serverutils"
	"braincells-be/internal/repository/unitofwork"
	"braincells-be/internal/service"
	"braincells-be/pkg/embedding"
	"braincells-be/pkg/events"
	"braincells-be/pkg/llm/factory"
	"braincells-be/pkg/vectorindex"

	pktNats "braincells-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const embeddingCacheTTL = 24 * time.Hour

type Container struct {
	Logger        logger.ILogger
	Authenticator *serverutils.Authenticator

	// Controllers
	BraincellController controller.IBraincellController
	ChatController      controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{
		Logger:        sysLogger,
		Authenticator: serverutils.NewAuthenticator(cfg.Auth.JwtSecret),
	}
	if cfg.Auth.JwtSecret == "" {
		sysLogger.Warn("Bootstrap", "JWT_SECRET is empty, every request will be anonymous", nil)
	}

	var index vectorindex.Index
	switch cfg.VectorIndex.Driver {
	case "memory":
		index = vectorindex.NewMemoryIndex()
	case "pgvector", "":
		index = vectorindex.NewPgVectorIndex(db)
	default:
		return nil, fmt.Errorf("unsupported vector index: %s", cfg.VectorIndex.Driver)
	}
	sysLogger.Info("Bootstrap", "vector index ready", map[string]interface{}{"driver": cfg.VectorIndex.Driver})

	uowFactory := unitofwork.NewRepositoryFactory(db, index)

	// 2. Model Providers
	embeddingProvider, err := c.newEmbeddingProvider(cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	llmProvider, err := factory.NewLLMProvider(factory.Params{
		Provider:  cfg.Ai.LLMProvider,
		ModelName: cfg.Ai.LLMModel,
		BaseURL:   llmBaseURL(cfg),
		APIKey:    cfg.Keys.OpenAI,
	})
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	sysLogger.Info("Bootstrap", "llm provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 3. Event Bus
	publisher, subscriber := c.newEventBus(cfg, sysLogger)

	// 4. Services
	braincellService := service.NewBraincellService(uowFactory, embeddingProvider, publisher, sysLogger)
	chatService := service.NewChatService(uowFactory, embeddingProvider, llmProvider, cfg.Ai.ChatPersona, sysLogger)

	// 5. Controllers
	c.BraincellController = controller.NewBraincellController(braincellService)
	c.ChatController = controller.NewChatController(chatService, sysLogger)
	c.ConsumerService = service.NewConsumerService(subscriber, sysLogger)

	return c, nil
}

func (c *Container) newEmbeddingProvider(cfg *config.Config, log logger.ILogger) (embedding.EmbeddingProvider, error) {
	var provider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	case "openai", "":
		if cfg.Keys.OpenAI == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai embedding provider")
		}
		provider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.OpenAIBaseURL, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimensions)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
	if cfg.Ai.EmbeddingRateLimit > 0 {
		// Limit upstream calls only; cache hits below stay free
		provider = embedding.NewRateLimitedProvider(provider, cfg.Ai.EmbeddingRateLimit)
	}
	log.Info("Bootstrap", "embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
		"cache":    cfg.Ai.EmbeddingCache,
		"rate":     cfg.Ai.EmbeddingRateLimit,
	})

	namespace := cfg.Ai.EmbeddingProvider + ":" + cfg.Ai.EmbeddingModel
	switch cfg.Ai.EmbeddingCache {
	case "none":
		return provider, nil
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Warn("Bootstrap", "failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			// The cached provider degrades to direct calls while Redis is down
			log.Warn("Bootstrap", "failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		return embedding.NewCachedProvider(provider, embedding.NewRedisCache(rdb, embeddingCacheTTL), namespace, log), nil
	default:
		return embedding.NewCachedProvider(provider, embedding.NewMemoryCache(embeddingCacheTTL), namespace, log), nil
	}
}

// newEventBus prefers NATS and falls back to the in-process bus so a missing
// broker never blocks writes.
func (c *Container) newEventBus(cfg *config.Config, log logger.ILogger) (events.Publisher, events.Subscriber) {
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, log)
		if err == nil {
			natsSub, subErr := pktNats.NewSubscriber(cfg.App.NatsURL, log)
			if subErr == nil {
				c.closers = append(c.closers, natsPub.Close, natsSub.Close)
				log.Info("Bootstrap", "event bus ready", map[string]interface{}{"driver": "nats"})
				return natsPub, natsSub.Bind(pktNats.Subject(">"), "braincells-audit")
			}
			natsPub.Close()
			err = subErr
		}
		log.Warn("Bootstrap", "failed to connect to NATS, using in-process bus", map[string]interface{}{"error": err.Error()})
	}

	bus := events.NewChannelBus(watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, bus.Close)
	log.Info("Bootstrap", "event bus ready", map[string]interface{}{"driver": "gochannel"})
	return bus, bus
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.OpenAIBaseURL
}

// Close releases broker and cache connections and flushes the logger.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
