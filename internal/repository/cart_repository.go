package repository

import (
	"context"
	"time"

	"freshbasket-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoCartRepository struct {
	col *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{col: db.Collection("carts")}
}

func (m *MongoCartRepository) Create(ctx context.Context, c *model.Cart) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	for i := range c.Items {
		if c.Items[i].ID.IsZero() {
			c.Items[i].ID = primitive.NewObjectID()
		}
	}

	res, err := m.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *MongoCartRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Cart, error) {
	var res model.Cart
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// Un usuario tiene a lo sumo un carrito activo.
func (m *MongoCartRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*model.Cart, error) {
	var res model.Cart
	err := m.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoCartRepository) Save(ctx context.Context, c *model.Cart) error {
	c.UpdatedAt = time.Now().UTC()

	for i := range c.Items {
		if c.Items[i].ID.IsZero() {
			c.Items[i].ID = primitive.NewObjectID()
		}
	}

	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoCartRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
