package mongo

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	defaultURI            = "mongodb://localhost:27017"
	defaultDatabase       = "carelink"
	defaultConnectTimeout = 10 * time.Second
	defaultMaxPoolSize    = 10
)

// Config holds the document-store connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// Validate checks the configuration for completeness.
func (c Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("MongoDB URI is required")
	}
	if c.Database == "" {
		return fmt.Errorf("MongoDB database name is required")
	}
	return nil
}

// NewConfigFromEnv reads the connection settings from MONGODB_URI and
// MONGODB_DATABASE, falling back to local development defaults.
func NewConfigFromEnv() Config {
	config := Config{
		URI:            os.Getenv("MONGODB_URI"),
		Database:       os.Getenv("MONGODB_DATABASE"),
		ConnectTimeout: defaultConnectTimeout,
		MaxPoolSize:    defaultMaxPoolSize,
	}
	if config.URI == "" {
		config.URI = defaultURI
	}
	if config.Database == "" {
		config.Database = defaultDatabase
	}
	return config
}

// Client wraps the driver client together with the project database.
type Client struct {
	*mongo.Client
	Database *mongo.Database
	logger   *zap.Logger
}

// NewClient connects to the document store and verifies the connection
// with a ping before returning.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientOptions := options.Client().
		ApplyURI(config.URI).
		SetMaxPoolSize(config.MaxPoolSize).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(30 * time.Minute).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(config.ConnectTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Successfully connected to MongoDB",
		zap.String("database", config.Database))

	return &Client{
		Client:   client,
		Database: client.Database(config.Database),
		logger:   logger,
	}, nil
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if err := c.Client.Disconnect(ctx); err != nil {
		c.logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		return err
	}
	c.logger.Info("Disconnected from MongoDB")
	return nil
}
