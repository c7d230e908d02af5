package taxodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	taxerrors "github.com/matzehuels/taxotree/pkg/errors"
)

// DefaultCollection is used when a MongoDB URI names no collection.
const DefaultCollection = "lineages"

// Mongo is a store in a MongoDB collection of {_id: key, value: lineage}
// documents.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// OpenMongo connects to MongoDB and selects database/collection.
func OpenMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrCodeStoreUnavailable, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, taxerrors.Wrap(taxerrors.ErrCodeStoreUnavailable, err, "ping mongodb")
	}
	return &Mongo{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (s *Mongo) Get(ctx context.Context, key string) (string, bool, error) {
	var e mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, taxerrors.Wrap(taxerrors.ErrCodeStoreUnavailable, err, "get %q", key)
	}
	return e.Value, true, nil
}

func (s *Mongo) Put(ctx context.Context, key, value string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return taxerrors.Wrap(taxerrors.ErrCodeStoreUnavailable, err, "put %q", key)
	}
	return nil
}

func (s *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Writer = (*Mongo)(nil)
