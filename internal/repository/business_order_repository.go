package repository

import (
	"context"
	"time"

	"freshbasket-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoBusinessOrderRepository struct {
	col *mongo.Collection
}

func NewMongoBusinessOrderRepository(db *mongo.Database) *MongoBusinessOrderRepository {
	return &MongoBusinessOrderRepository{col: db.Collection("business_orders")}
}

func (m *MongoBusinessOrderRepository) Create(ctx context.Context, o *model.BusinessOrder) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	res, err := m.col.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *MongoBusinessOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.BusinessOrder, error) {
	var res model.BusinessOrder
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoBusinessOrderRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*model.BusinessOrder, error) {
	return m.find(ctx, bson.M{"user_id": userID})
}

func (m *MongoBusinessOrderRepository) FindAll(ctx context.Context) ([]*model.BusinessOrder, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoBusinessOrderRepository) find(ctx context.Context, filter bson.M) ([]*model.BusinessOrder, error) {
	cur, err := m.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.BusinessOrder
	for cur.Next(ctx) {
		var v model.BusinessOrder
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

func (m *MongoBusinessOrderRepository) Save(ctx context.Context, o *model.BusinessOrder) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoBusinessOrderRepository) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}

// SumQuotedAmounts agrega el monto total cotizado.
func (m *MongoBusinessOrderRepository) SumQuotedAmounts(ctx context.Context) (float64, error) {
	return sumField(ctx, m.col, bson.M{"is_quote_sent": true}, "$final_amount")
}

// SumDeliveredAmounts agrega el ingreso de pedidos mayoristas entregados.
func (m *MongoBusinessOrderRepository) SumDeliveredAmounts(ctx context.Context) (float64, error) {
	return sumField(ctx, m.col, bson.M{"status": model.BusinessOrderDelivered}, "$final_amount")
}
