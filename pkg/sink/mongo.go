package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quarkusio/extensions-enricher/pkg/catalog"
)

// DefaultCollection receives records when no collection is configured.
const DefaultCollection = "sourceControlInfo"

// MongoConfig configures a [MongoSink].
type MongoConfig struct {
	URL        string
	Database   string
	Collection string
}

// MongoSink upserts records into a collection, keyed by their foreign key,
// so repeated runs replace rather than duplicate.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSink connects to MongoDB.
func NewMongoSink(ctx context.Context, cfg MongoConfig) (*MongoSink, error) {
	if !strings.HasPrefix(cfg.URL, "mongodb://") && !strings.HasPrefix(cfg.URL, "mongodb+srv://") {
		cfg.URL = "mongodb://" + cfg.URL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoSink{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Write upserts every record in one bulk operation.
func (s *MongoSink) Write(ctx context.Context, records []*catalog.SourceControlInfo) error {
	if len(records) == 0 {
		return nil
	}
	models, err := upserts(records)
	if err != nil {
		return err
	}
	if _, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

func upserts(records []*catalog.SourceControlInfo) ([]mongo.WriteModel, error) {
	models := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		doc, err := toDocument(r)
		if err != nil {
			return nil, fmt.Errorf("encode record %s: %w", r.Key, err)
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"key": r.Key}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	return models, nil
}

// toDocument converts a record through its JSON form so documents carry the
// same field names as the JSON output.
func toDocument(r *catalog.SourceControlInfo) (bson.M, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Close disconnects from MongoDB.
func (s *MongoSink) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Sink = (*MongoSink)(nil)
