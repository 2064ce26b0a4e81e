package mongo

import (
	"context"
	"time"

	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens the shared client and verifies the deployment is
// reachable. Built once per process and reused by every repository.
func Connect(ctx context.Context, uri string) (*mongodrv.Client, error) {
	client, err := mongodrv.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx2, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}
