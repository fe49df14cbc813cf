package database

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

const (
	connectMaxRetries    = 5
	connectRetryInterval = 5 * time.Second
)

// Connect establishes the MongoDB connection with a bounded retry loop
// (5 attempts, fixed 5s backoff) and verifies it with a ping.
func Connect(mongoURI string) error {
	if mongoURI == "" {
		return errors.New("mongo URI is empty")
	}

	var lastErr error
	for attempt := 1; attempt <= connectMaxRetries; attempt++ {
		log.Printf("Connecting to MongoDB (attempt %d/%d)...", attempt, connectMaxRetries)

		client, err := connectOnce(mongoURI)
		if err == nil {
			Client = client
			DB = client.Database(databaseName(mongoURI))
			log.Println("✅ Connected to MongoDB")
			return nil
		}

		lastErr = err
		log.Printf("MongoDB connection failed: %v", err)
		if attempt < connectMaxRetries {
			time.Sleep(connectRetryInterval)
		}
	}
	return lastErr
}

func connectOnce(mongoURI string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)
	clientOptions.SetMaxPoolSize(10)
	clientOptions.SetRetryWrites(true)
	clientOptions.SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// databaseName extracts the database name from the connection string,
// defaulting to "bookclub" when the URI doesn't name one.
func databaseName(mongoURI string) string {
	dbName := "bookclub"
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			dbName = dbPart
		}
	}
	return dbName
}

func Disconnect() error {
	if Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
