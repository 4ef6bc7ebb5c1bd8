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

const productsCollection = "products"

// ProductRepository implements ports.ProductRepository using MongoDB.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(productsCollection)}
}

type mongoProduct struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Brand         string             `bson:"brand"`
	SKU           string             `bson:"sku"`
	Price         float64            `bson:"price"`
	Description   string             `bson:"description,omitempty"`
	CoverImageURL string             `bson:"cover_image_url,omitempty"`
	CategoryIDs   []string           `bson:"category_ids"`
	Stock         int                `bson:"stock"`
	Deleted       bool               `bson:"deleted"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
}

// Create inserts a new product document.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoProduct(p)
	doc.ID = primitive.NewObjectID()
	doc.Deleted = false

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrProductExists
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a live product.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoProduct
	err := r.col.FindOne(ctx, bson.M{"_id": oid, "deleted": false}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context, page ports.Page) ([]*domain.Product, error) {
	return r.find(ctx, NewProductFilterBuilder().Build(), page)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID string, page ports.Page) ([]*domain.Product, error) {
	return r.find(ctx, NewProductFilterBuilder().InCategory(categoryID).Build(), page)
}

func (r *ProductRepository) Search(ctx context.Context, params ports.ProductSearchParams, page ports.Page) ([]*domain.Product, error) {
	return r.find(ctx, productFilter(params), page)
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	oid, ok := objectID(p.ID)
	if !ok {
		return domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoProduct(p)
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "deleted": false}, bson.M{"$set": bson.M{
		"title":           doc.Title,
		"brand":           doc.Brand,
		"sku":             doc.SKU,
		"price":           doc.Price,
		"description":     doc.Description,
		"cover_image_url": doc.CoverImageURL,
		"category_ids":    doc.CategoryIDs,
		"stock":           doc.Stock,
		"updated_at":      doc.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProductExists
		}
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// SoftDelete flags the product as deleted; the document stays for order history.
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "deleted": false}, bson.M{"$set": bson.M{
		"deleted":    true,
		"updated_at": time.Now().UTC().Unix(),
	}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// ReserveStock decrements stock only when enough units remain, in a single
// conditional update.
func (r *ProductRepository) ReserveStock(ctx context.Context, productID string, qty int) error {
	oid, ok := objectID(productID)
	if !ok {
		return domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "deleted": false, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid, "deleted": false})
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return domain.ErrInsufficientStock
}

// ReleaseStock returns units to stock, including for soft-deleted products.
func (r *ProductRepository) ReleaseStock(ctx context.Context, productID string, qty int) error {
	oid, ok := objectID(productID)
	if !ok {
		return domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"stock": qty}})
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the products collection.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category_ids", Value: 1}}},
		{Keys: bson.D{{Key: "deleted", Value: 1}, {Key: "price", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, page ports.Page) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	field, desc := page.SortField()
	cur, err := r.col.Find(ctx, filter, pageOptions(page.Offset(), page.Size, field, desc))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []mongoProduct
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func toMongoProduct(p *domain.Product) mongoProduct {
	categoryIDs := p.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []string{}
	}
	return mongoProduct{
		Title:         p.Title,
		Brand:         p.Brand,
		SKU:           p.SKU,
		Price:         p.Price,
		Description:   p.Description,
		CoverImageURL: p.CoverImageURL,
		CategoryIDs:   categoryIDs,
		Stock:         p.Stock,
		Deleted:       p.Deleted,
		CreatedAt:     timeToUnix(p.CreatedAt),
		UpdatedAt:     timeToUnix(p.UpdatedAt),
	}
}

func (d mongoProduct) toDomain() *domain.Product {
	categoryIDs := d.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []string{}
	}
	return &domain.Product{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Brand:         d.Brand,
		SKU:           d.SKU,
		Price:         d.Price,
		Description:   d.Description,
		CoverImageURL: d.CoverImageURL,
		CategoryIDs:   categoryIDs,
		Stock:         d.Stock,
		Deleted:       d.Deleted,
		CreatedAt:     unixToTime(d.CreatedAt),
		UpdatedAt:     unixToTime(d.UpdatedAt),
	}
}
