package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onlinestore/product-store/internal/core/domain"
)

func TestUserMapping_KeepsRoles(t *testing.T) {
	in := &domain.User{
		Email:     "a@example.com",
		Roles:     []domain.Role{domain.RoleUser, domain.RoleAdmin},
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
	out := toMongoUser(in).toDomain()
	if !out.HasRole(domain.RoleAdmin) || len(out.Roles) != 2 {
		t.Fatalf("roles lost in mapping: %v", out.Roles)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("created_at changed: %v", out.CreatedAt)
	}
	if !out.UpdatedAt.IsZero() {
		t.Fatalf("zero time must stay zero, got %v", out.UpdatedAt)
	}
}

func TestProductMapping_NilCategories(t *testing.T) {
	doc := toMongoProduct(&domain.Product{Title: "Dune"})
	if doc.CategoryIDs == nil {
		t.Fatal("category_ids must be stored as an empty array")
	}
	if out := (mongoProduct{}).toDomain(); out.CategoryIDs == nil {
		t.Fatal("category ids must decode to an empty slice")
	}
}

func TestOrderMapping_Items(t *testing.T) {
	o := &domain.Order{
		Number: "ORD-1",
		Status: domain.OrderPending,
		Items:  []domain.OrderItem{{ID: "i1", ProductID: "p1", Title: "Dune", Quantity: 2, UnitPrice: 9.5}},
	}
	out := toMongoOrder(o).toDomain()
	if out.Status != domain.OrderPending || len(out.Items) != 1 || out.Items[0].Subtotal() != 19 {
		t.Fatalf("unexpected order %+v", out)
	}
}

func TestStatusTransitionFilter_RequiresCurrentStatus(t *testing.T) {
	oid := primitive.NewObjectID()
	filter := statusTransitionFilter(oid, domain.OrderPending)
	if filter["_id"] != oid {
		t.Fatalf("unexpected _id in filter: %v", filter["_id"])
	}
	if filter["status"] != "pending" {
		t.Fatalf("filter must pin the current status, got %v", filter["status"])
	}

	update := statusTransitionUpdate(domain.OrderCancelled, time.Unix(1700000000, 0))
	set, ok := update["$set"].(bson.M)
	if !ok || set["status"] != "cancelled" {
		t.Fatalf("unexpected $set: %v", update["$set"])
	}
	push, ok := update["$push"].(bson.M)
	if !ok {
		t.Fatalf("missing $push: %v", update)
	}
	if entry, ok := push["status_history"].(mongoStatusEntry); !ok || entry.Status != "cancelled" {
		t.Fatalf("unexpected history entry: %v", push["status_history"])
	}
}
