package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/IBM/sarama"

	"dinely/internal/bookings"
	"dinely/internal/notifications"
	"dinely/internal/offers"
	"dinely/internal/restaurants"
	"dinely/internal/shared/config"
	"dinely/internal/shared/database"
	"dinely/internal/slots"
	"dinely/pkg/cache"
	"dinely/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router wires every feature package together and owns the objects with a
// lifecycle (the booking service, the refund publisher, the reaper).
type Router struct {
	config *config.Config
	db     *database.DB
	log    *logger.Logger

	bookingService bookings.Service
	publisher      notifications.Publisher
	reaper         *bookings.Reaper
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, log *logger.Logger) *Router {
	return &Router{
		config: cfg,
		db:     db,
		log:    log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Feature wiring. The booking service is built first; slots consume
		// its availability reader, and the publisher feeds it refunds.
		r.setupBookingDependencies(api)
		r.setupRestaurantRoutes(api)
		r.setupSlotRoutes(api)
		r.setupOfferRoutes(api)
		r.setupNotificationRoutes(api)
	}
}

// BookingService exposes the wired booking service for the reaper and tests.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// StartBackground launches the expiry reaper and, when Kafka is enabled, the
// refund consumer. Returns a stop function for graceful shutdown.
func (r *Router) StartBackground(ctx context.Context) (func(), error) {
	r.reaper = bookings.NewReaper(r.bookingService, &bookings.ReaperConfig{
		SweepInterval: r.config.Booking.SweepInterval,
	}, r.log)
	r.reaper.Start(ctx)

	var consumer notifications.Consumer
	if r.config.Kafka.Enabled {
		var err error
		consumer, err = notifications.NewKafkaConsumer(&notifications.ConsumerConfig{
			Brokers:          r.config.Kafka.Brokers,
			GroupID:          r.config.Kafka.ConsumerGroup,
			Topics:           []string{r.config.Kafka.Topic},
			SessionTimeoutMs: 30000,
			HeartbeatMs:      3000,
			MaxRetries:       3,
			RetryBackoff:     time.Second,
			OffsetOldest:     true,
		}, notifications.NewRepository(r.db.GetPostgreSQL()), r.log)
		if err != nil {
			return nil, err
		}
		if err := consumer.Start(ctx, 2); err != nil {
			return nil, err
		}
	}

	stop := func() {
		r.reaper.Stop()
		if consumer != nil {
			if err := consumer.Stop(); err != nil {
				r.log.WithError(err).Error("failed to stop refund consumer")
			}
		}
		if r.publisher != nil {
			if err := r.publisher.Close(); err != nil {
				r.log.WithError(err).Error("failed to close refund publisher")
			}
		}
	}
	return stop, nil
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "dinely-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "dinely-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupBookingDependencies builds the reservation engine and its routes.
func (r *Router) setupBookingDependencies(rg *gin.RouterGroup) {
	gormDB := r.db.GetPostgreSQL()

	slotService := slots.NewService(slots.NewRepository(gormDB))
	restaurantService := restaurants.NewService(restaurants.NewRepository(gormDB))
	offerService := offers.NewService(offers.NewRepository(gormDB))
	notificationRepo := notifications.NewRepository(gormDB)

	if r.config.Kafka.Enabled {
		publisher, err := notifications.NewKafkaPublisher(&notifications.KafkaProducerConfig{
			Brokers:          r.config.Kafka.Brokers,
			Topic:            r.config.Kafka.Topic,
			RetryMax:         3,
			TimeoutMs:        10000,
			RequiredAcks:     sarama.WaitForAll,
			CompressionType:  sarama.CompressionSnappy,
			IdempotentWrites: true,
		}, r.log)
		if err != nil {
			// The core must keep cancelling even with the broker down.
			r.log.WithError(err).Error("kafka unavailable, storing refund requests directly")
			r.publisher = notifications.NewDirectPublisher(notificationRepo, r.log)
		} else {
			r.publisher = publisher
		}
	} else {
		r.publisher = notifications.NewDirectPublisher(notificationRepo, r.log)
	}

	var cacheService cache.Service
	if redisClient := r.db.GetRedisClient(); redisClient != nil {
		cacheService = cache.NewService(redisClient)
	}

	r.bookingService = bookings.NewService(
		bookings.NewRepository(gormDB),
		bookings.NewSlotServiceAdapter(slotService),
		bookings.NewRateServiceAdapter(restaurantService),
		bookings.NewOfferServiceAdapter(offerService),
		r.publisher,
		cacheService,
		bookings.ServiceConfig{
			HoldTTL:              r.config.Booking.HoldTTL,
			RefundCutoff:         r.config.Booking.RefundCutoff,
			AvailabilityCacheTTL: r.config.Booking.AvailabilityCacheTTL,
		},
		r.log,
	)

	bookings.SetupBookingRoutes(rg, bookings.NewController(r.bookingService))
}

func (r *Router) setupRestaurantRoutes(rg *gin.RouterGroup) {
	service := restaurants.NewService(restaurants.NewRepository(r.db.GetPostgreSQL()))
	restaurants.SetupRestaurantRoutes(rg, restaurants.NewController(service))
}

func (r *Router) setupSlotRoutes(rg *gin.RouterGroup) {
	service := slots.NewService(slots.NewRepository(r.db.GetPostgreSQL()))
	controller := slots.NewController(service, r.bookingService)
	slots.SetupSlotRoutes(rg, controller)
}

func (r *Router) setupOfferRoutes(rg *gin.RouterGroup) {
	service := offers.NewService(offers.NewRepository(r.db.GetPostgreSQL()))
	offers.SetupOfferRoutes(rg, offers.NewController(service))
}

func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	service := notifications.NewService(notifications.NewRepository(r.db.GetPostgreSQL()))
	notifications.SetupNotificationRoutes(rg, notifications.NewController(service))
}
