package config

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/aimaker-waitlist/internal/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoConnectTimeout = 10 * time.Second

// NewMongoClient connects and pings MongoDB. Only the mongo backend needs it.
func NewMongoClient(logger *log.Logger, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: uri is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", "error", err)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	logger.Info("MongoDB connection established successfully")
	return client, nil
}

func CloseMongo(client *mongo.Client, logger *log.Logger) {
	if client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		logger.Error("Failed to disconnect MongoDB", "error", err)
		return
	}
	logger.Info("MongoDB disconnected successfully")
}
