package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	amqp "github.com/streadway/amqp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/crypto/bcrypt"

	"gudang/internal/handlers"
	"gudang/internal/middleware"
	"gudang/internal/repositories"
	"gudang/internal/services"
	"gudang/pkg/rabbitmq"
)

// NewApp wires repositories, services and handlers into a Fiber app. The
// store-backed repositories are constructed by the caller so tests can
// substitute in-memory ones. events may be nil.
func NewApp(userRepo repositories.UserRepository, productRepo repositories.ProductRepository, events services.EventPublisher, jwtSecret string, bcryptCost int) *fiber.App {
	userService := services.NewUserService(userRepo, jwtSecret, bcryptCost)
	inventoryService := services.NewInventoryService(productRepo, events)

	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(inventoryService)

	app := fiber.New()
	app.Use(logger.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Gudang API is running")
	})

	api := app.Group("/api")
	userHandler.RegisterRoutes(api, middleware.AuthRequired(userService))
	productHandler.RegisterRoutes(api)

	return app
}

// handleInventoryEvent processes one delivery from the inventory events
// queue. Returning an error nacks the delivery so it is redelivered.
func handleInventoryEvent(msg amqp.Delivery) error {
	var event rabbitmq.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("failed to decode inventory event: %w", err)
	}
	log.Printf("Inventory event %s (%s): %v", event.Type, event.ID, event.Payload)
	return nil
}

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":5000")
	viper.SetDefault("MONGO_DB", "gudang")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	mongoURI := viper.GetString("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}

	// --- Connect to the document store ---
	// The store connection is the one fatal dependency: the process exits if
	// the initial connect or ping fails.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("MongoDB connected")
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := client.Database(viper.GetString("MONGO_DB"))

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	productRepo := repositories.NewMongoProductRepository(db)

	// --- Initialize RabbitMQ client (optional) ---
	// Unlike the store, the broker is not fatal: the API runs without event
	// publishing when no broker is reachable.
	var events services.EventPublisher
	var mqClient *rabbitmq.Client
	if rabbitMQURL := viper.GetString("RABBITMQ_URL"); rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, continuing without events: %v", err)
		} else {
			events = mqClient
			defer mqClient.Close()

			log.Println("Starting inventory events consumer...")
			if consumeErr := mqClient.ConsumeInventoryEvents(handleInventoryEvent); consumeErr != nil {
				log.Printf("Warning: failed to start inventory events consumer: %v", consumeErr)
			}
		}
	}

	app := NewApp(userRepo, productRepo, events, viper.GetString("JWT_SECRET"), viper.GetInt("BCRYPT_COST"))

	// --- Start HTTP Server ---
	log.Printf("Starting server on %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
