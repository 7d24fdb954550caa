//go:build integration

package containers

import (
	"context"
	"testing"

	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kicon/kiconapi/internal/db"
)

// NewMongo starts a throwaway mongod and returns an indexed database.
func NewMongo(t *testing.T) *mongo.Database {
	t.Helper()

	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get mongo connection string: %v", err)
	}

	client, err := db.NewMongo(ctx, uri)
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	database := client.Database("kicon_test")
	if err := db.EnsureIndexes(ctx, database); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	return database
}
