package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openmart/martcart/internal/domain"
)

// storedItem mirrors domain.LineItem for BSON storage. Prices are kept
// as strings so decimals survive the round trip without float drift.
type storedItem struct {
	ID            string    `bson:"id"`
	ProductID     string    `bson:"product_id"`
	Name          string    `bson:"name"`
	OriginalPrice string    `bson:"original_price"`
	DiscountPrice string    `bson:"discount_price"`
	Quantity      int       `bson:"quantity"`
	Stock         int       `bson:"stock"`
	ShopID        string    `bson:"shop_id"`
	ShopName      string    `bson:"shop_name"`
	Image         string    `bson:"image,omitempty"`
	AddedAt       time.Time `bson:"added_at"`
}

type storedCart struct {
	ID        string       `bson:"_id,omitempty"`
	UserID    string       `bson:"user_id"`
	Items     []storedItem `bson:"items"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

func toStored(c *domain.Cart) *storedCart {
	sc := &storedCart{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     make([]storedItem, len(c.Items)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for i, li := range c.Items {
		sc.Items[i] = storedItem{
			ID:            li.ID,
			ProductID:     li.ProductID,
			Name:          li.Name,
			OriginalPrice: li.OriginalPrice.String(),
			DiscountPrice: li.DiscountPrice.String(),
			Quantity:      li.Quantity,
			Stock:         li.Stock,
			ShopID:        li.ShopID,
			ShopName:      li.ShopName,
			Image:         li.Image,
			AddedAt:       li.AddedAt,
		}
	}
	return sc
}

func fromStored(sc *storedCart) (*domain.Cart, error) {
	c := &domain.Cart{
		ID:        sc.ID,
		UserID:    sc.UserID,
		Items:     make([]domain.LineItem, len(sc.Items)),
		CreatedAt: sc.CreatedAt,
		UpdatedAt: sc.UpdatedAt,
	}
	for i, si := range sc.Items {
		original, err := decimal.NewFromString(si.OriginalPrice)
		if err != nil {
			return nil, fmt.Errorf("parse original price for item %s: %w", si.ID, err)
		}
		discounted, err := decimal.NewFromString(si.DiscountPrice)
		if err != nil {
			return nil, fmt.Errorf("parse discount price for item %s: %w", si.ID, err)
		}
		c.Items[i] = domain.LineItem{
			ID:            si.ID,
			ProductID:     si.ProductID,
			Name:          si.Name,
			OriginalPrice: original,
			DiscountPrice: discounted,
			Quantity:      si.Quantity,
			Stock:         si.Stock,
			ShopID:        si.ShopID,
			ShopName:      si.ShopName,
			Image:         si.Image,
			AddedAt:       si.AddedAt,
		}
	}
	return c, nil
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var sc storedCart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&sc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return fromStored(&sc)
}

func (m *mongoRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()

	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	sc := toStored(cart)

	filter := bson.M{"user_id": cart.UserID}
	update := bson.M{"$set": bson.M{
		"user_id":    sc.UserID,
		"items":      sc.Items,
		"created_at": sc.CreatedAt,
		"updated_at": sc.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *mongoRepository) DeleteCart(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

// EnsureIndexes creates the carts collection indexes. Run at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	if _, err := db.Collection("carts").Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
