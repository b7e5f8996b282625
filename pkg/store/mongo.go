package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tkoester/pinset/pkg/audit"
)

const (
	defaultDatabase   = "pinset"
	reportsCollection = "reports"
	connectTimeout    = 5 * time.Second
)

// MongoStore persists reports in a MongoDB collection, keyed by the
// report id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB at uri and prepares the reports
// collection. An empty database name selects "pinset".
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = defaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(database).Collection(reportsCollection)

	// Reports are listed newest first; index CreatedAt for that scan.
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

type reportDoc struct {
	ID     string        `bson:"_id"`
	Report *audit.Report `bson:"report"`
	// CreatedAt is duplicated at the top level for the list index.
	CreatedAt time.Time `bson:"created_at"`
}

func (s *MongoStore) Save(ctx context.Context, report *audit.Report) error {
	doc := reportDoc{ID: report.ID, Report: report, CreatedAt: report.CreatedAt}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": report.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save report %s: %w", report.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*audit.Report, error) {
	var doc reportDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	return doc.Report, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*audit.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*audit.Report
	for cursor.Next(ctx) {
		var doc reportDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, doc.Report)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ ReportStore = (*MongoStore)(nil)
