package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
)

const ordersCollection = "orders"

// OrderRepository implements ports.OrderRepository using MongoDB. Items are
// embedded in the order document.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(ordersCollection)}
}

type mongoOrderItem struct {
	ID        string  `bson:"id"`
	ProductID string  `bson:"product_id"`
	Title     string  `bson:"title"`
	Quantity  int     `bson:"quantity"`
	UnitPrice float64 `bson:"unit_price"`
}

type mongoStatusEntry struct {
	Status    string    `bson:"status"`
	Timestamp time.Time `bson:"timestamp"`
}

type mongoOrder struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Number          string             `bson:"number"`
	UserID          string             `bson:"user_id"`
	Status          string             `bson:"status"`
	Total           float64            `bson:"total"`
	ShippingAddress string             `bson:"shipping_address"`
	OrderDate       time.Time          `bson:"order_date"`
	UpdatedAt       time.Time          `bson:"updated_at"`
	Items           []mongoOrderItem   `bson:"items"`
	StatusHistory   []mongoStatusEntry `bson:"status_history"`
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoOrder(o)
	doc.ID = primitive.NewObjectID()
	doc.StatusHistory = []mongoStatusEntry{{Status: doc.Status, Timestamp: doc.OrderDate}}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoOrder
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain(), nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, page ports.Page) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size)).
		SetSort(bson.D{{Key: "order_date", Value: -1}})

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var docs []mongoOrder
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	out := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// UpdateStatus atomically sets the order status and appends a history entry,
// provided the stored status still equals from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, ts time.Time) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, statusTransitionFilter(oid, from), statusTransitionUpdate(to, ts))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return domain.ErrInvalidTransition
}

func statusTransitionFilter(oid primitive.ObjectID, from domain.OrderStatus) bson.M {
	return bson.M{"_id": oid, "status": string(from)}
}

func statusTransitionUpdate(to domain.OrderStatus, ts time.Time) bson.M {
	return bson.M{
		"$set":  bson.M{"status": string(to), "updated_at": ts.UTC()},
		"$push": bson.M{"status_history": mongoStatusEntry{Status: string(to), Timestamp: ts.UTC()}},
	}
}

// EnsureIndexes creates necessary indexes on the orders collection.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "order_date", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toMongoOrder(o *domain.Order) mongoOrder {
	items := make([]mongoOrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, mongoOrderItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return mongoOrder{
		Number:          o.Number,
		UserID:          o.UserID,
		Status:          string(o.Status),
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		OrderDate:       o.OrderDate.UTC(),
		UpdatedAt:       o.UpdatedAt.UTC(),
		Items:           items,
	}
}

func (d mongoOrder) toDomain() *domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.OrderItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return &domain.Order{
		ID:              d.ID.Hex(),
		Number:          d.Number,
		UserID:          d.UserID,
		Status:          domain.OrderStatus(d.Status),
		Total:           d.Total,
		ShippingAddress: d.ShippingAddress,
		OrderDate:       d.OrderDate.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
		Items:           items,
	}
}
