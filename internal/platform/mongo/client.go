// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mongo provides a managed MongoDB client for the document backend.

It is the alternative to the PostgreSQL backend, selected with
DOCUMENT_BACKEND=mongo. Posts and users are stored as BSON documents in two
collections of the configured database.
*/
package mongo

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default timeouts for MongoDB operations.
const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
	maxPoolSize    = 20
)

// Connect dials MongoDB, verifies connectivity and returns the named database.
//
// # Parameters
//   - context: Context for the initial connection attempt.
//   - mongoURL: A mongodb:// or mongodb+srv:// URL.
//   - database: Database name.
//   - logger: Structured logger for connection events.
func Connect(context stdctx.Context, mongoURL, database string, logger *slog.Logger) (*mongo.Database, error) {
	clientOptions := options.Client().
		ApplyURI(mongoURL).
		SetMaxPoolSize(maxPoolSize).
		SetConnectTimeout(connectTimeout).
		SetAppName("geopost")

	connectCtx, cancel := stdctx.WithTimeout(context, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo: failed to connect: %w", err)
	}

	if err := Ping(context, client); err != nil {
		_ = client.Disconnect(stdctx.Background())
		return nil, err
	}

	logger.Info("mongo_client_connected", slog.String("database", database))

	return client.Database(database), nil
}

// Ping verifies that the primary is reachable.
func Ping(context stdctx.Context, client *mongo.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping failed: %w", err)
	}

	return nil
}
