package sellers

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
)

var ErrSellerNotFound = errors.New("seller not found")

// SellerRepository is the seller directory as the checkout sees it.
type SellerRepository interface {
	ListActiveSellers(ctx context.Context) ([]d.Seller, error)
	GetSeller(ctx context.Context, id string) (*d.Seller, error)
	UpsertSeller(ctx context.Context, seller d.Seller) error
	Ping(ctx context.Context) error
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("sellers"),
	}
}

func (m *MongoRepository) ListActiveSellers(ctx context.Context) ([]d.Seller, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	defer cursor.Close(ctx)

	sellers := make([]d.Seller, 0)
	if err := cursor.All(ctx, &sellers); err != nil {
		return nil, fmt.Errorf("failed to decode sellers: %w", err)
	}
	return sellers, nil
}

func (m *MongoRepository) GetSeller(ctx context.Context, id string) (*d.Seller, error) {
	var seller d.Seller
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&seller)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return &seller, nil
}

func (m *MongoRepository) UpsertSeller(ctx context.Context, seller d.Seller) error {
	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": seller.ID}, seller, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert seller: %w", err)
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "active", Value: 1}, {Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create seller indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.collection.Database().Client().Ping(ctx, readpref.Primary())
}
