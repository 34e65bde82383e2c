package repository

import (
	"context"
	"time"

	"freshbasket-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoCheckoutRepository struct {
	col *mongo.Collection
}

func NewMongoCheckoutRepository(db *mongo.Database) *MongoCheckoutRepository {
	return &MongoCheckoutRepository{col: db.Collection("checkouts")}
}

func (m *MongoCheckoutRepository) Create(ctx context.Context, c *model.Checkout) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := m.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *MongoCheckoutRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Checkout, error) {
	var res model.Checkout
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoCheckoutRepository) Save(ctx context.Context, c *model.Checkout) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
