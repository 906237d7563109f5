package mongostore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/quoteflow/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config holds connection settings for the corpus collection
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Provider loads the historical corpus from a MongoDB collection of request documents
type Provider struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewProvider connects to MongoDB and verifies the connection
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Printf("[MONGO] connected, corpus collection %s.%s", config.Database, config.Collection)

	return &Provider{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
		timeout:    config.Timeout,
	}, nil
}

// LoadCorpus implements domain.CorpusProvider
func (p *Provider) LoadCorpus(ctx context.Context) (*domain.Corpus, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := p.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find requests: %w", err)
	}
	defer cursor.Close(ctx)

	corpus := &domain.Corpus{Requests: []domain.Request{}}
	for cursor.Next(ctx) {
		req, err := decodeRequest(cursor.Current)
		if err != nil {
			log.Printf("[MONGO] skipping document: %v", err)
			continue
		}
		corpus.Requests = append(corpus.Requests, req)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	log.Printf("[MONGO] loaded %d requests", len(corpus.Requests))
	return corpus, nil
}

// Close disconnects the client
func (p *Provider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.client.Disconnect(ctx)
}

func decodeRequest(raw bson.Raw) (domain.Request, error) {
	var doc requestDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return domain.Request{}, fmt.Errorf("failed to decode request document: %w", err)
	}
	return doc.toDomain(), nil
}
