package repository

import (
	"context"
	"errors"
	"time"

	"freshbasket-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("documento no encontrado")

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (m *MongoOrderRepository) Create(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	// Cada sub-orden necesita su propio id para poder cancelarla individualmente.
	for i := range o.RecurringOrders {
		if o.RecurringOrders[i].ID.IsZero() {
			o.RecurringOrders[i].ID = primitive.NewObjectID()
		}
	}

	res, err := m.col.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoOrderRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"user_id": userID})
}

func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]*model.Order, error) {
	cur, err := m.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

// Save reemplaza el documento entero. Las mutaciones (cancelaciones,
// cambios de estado) se hacen sobre el modelo en memoria y se persisten acá.
func (m *MongoOrderRepository) Save(ctx context.Context, o *model.Order) error {
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

func (m *MongoOrderRepository) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}

func (m *MongoOrderRepository) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{"status": status})
}

func (m *MongoOrderRepository) CountWithScheduledDeliveries(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{"recurring_orders.status": model.SubOrderScheduled})
}

// SumDeliveredTotals agrega el ingreso de órdenes entregadas.
func (m *MongoOrderRepository) SumDeliveredTotals(ctx context.Context) (float64, error) {
	return sumField(ctx, m.col, bson.M{"status": model.OrderDelivered}, "$total")
}

// sumField corre el pipeline $match + $group/$sum y devuelve el total,
// 0 si no hubo documentos que sumar.
func sumField(ctx context.Context, col *mongo.Collection, match bson.M, field string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": field}}}},
	}
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total float64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, nil
}
