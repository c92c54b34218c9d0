package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developia-II/speech-translator-backend/internal/models"
)

// MongoHistory stores translations in the "translations" collection.
type MongoHistory struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	collection := client.Database(dbName).Collection("translations")
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoHistory{client: client, collection: collection}, nil
}

func (m *MongoHistory) Save(ctx context.Context, t *models.Translation) error {
	if _, err := m.collection.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert translation: %w", err)
	}
	return nil
}

func (m *MongoHistory) List(ctx context.Context, limit int) ([]models.Translation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find translations: %w", err)
	}
	defer cursor.Close(ctx)

	translations := []models.Translation{}
	if err := cursor.All(ctx, &translations); err != nil {
		return nil, fmt.Errorf("decode translations: %w", err)
	}
	return translations, nil
}

func (m *MongoHistory) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
