package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"edunextgen-api/internal/config"
)

// NewMongoClient conecta con la Stable API v1 en modo estricto.
func NewMongoClient(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(5 * time.Second).
		SetMaxPoolSize(20).
		// los subdocumentos de education/subjects/experience se leen como mapas
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// UsersCollection devuelve la coleccion de usuarios y garantiza el indice unico por email.
func UsersCollection(ctx context.Context, client *mongo.Client, cfg *config.Config) (*mongo.Collection, error) {
	coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "profile.rating", Value: -1}},
			Options: options.Index().SetName("role_rating"),
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("create user indexes: %w", err)
	}
	return coll, nil
}
