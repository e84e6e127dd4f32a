package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harshit25jain/canteen-client/internal/domain"
)

// MongoStore keeps the cart snapshot as a single document keyed by the
// fixed storage name.
type MongoStore struct {
	collection *mongo.Collection
}

type cartDocument struct {
	ID        string      `bson:"_id"`
	Cart      domain.Cart `bson:"cart"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("cart_snapshots")}
}

// ConnectMongo dials mongo and verifies the connection before handing
// back the database handle.
func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(dbName), nil
}

func (s *MongoStore) Load(ctx context.Context) (*domain.Cart, error) {
	var doc cartDocument

	filter := bson.M{"_id": Key}
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	cart := doc.Cart
	return &cart, nil
}

func (s *MongoStore) Save(ctx context.Context, cart *domain.Cart) error {
	doc := cartDocument{
		ID:        Key,
		Cart:      *cart,
		UpdatedAt: time.Now(),
	}

	filter := bson.M{"_id": Key}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
