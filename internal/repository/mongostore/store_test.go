package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"evalue-storefront/config"
	"evalue-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFlatten(t *testing.T) {
	out := bson.M{}
	flatten("", map[string]any{
		"cart":  map[string]any{"p1": map[string]any{"product": "p1"}},
		"empty": map[string]any{},
		"title": "Cap",
	}, out)

	assert.Equal(t, bson.M{
		"cart.p1.product": bson.M{"$literal": "p1"},
		"empty":           keepDocument("empty"),
		"title":           bson.M{"$literal": "Cap"},
	}, out)
	assert.Equal(t, "$empty", out["empty"].(bson.M)["$cond"].(bson.A)[1])
}

func TestToDocument(t *testing.T) {
	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	raw := bson.M{
		"_id":        "p1",
		"_updatedAt": primitive.NewDateTimeFromTime(when),
		"title":      "Cap",
		"images":     primitive.A{"a.jpg", "b.jpg"},
		"cart":       bson.M{"p1": bson.D{{Key: "product", Value: "p1"}}},
		"seenAt":     primitive.NewDateTimeFromTime(when),
	}

	doc := toDocument(raw)
	assert.Equal(t, "p1", doc.ID)
	assert.NotContains(t, doc.Data, "_updatedAt")
	assert.Equal(t, []any{"a.jpg", "b.jpg"}, doc.Data["images"])
	assert.Equal(t, map[string]any{"p1": map[string]any{"product": "p1"}}, doc.Data["cart"])
	assert.True(t, when.Equal(doc.Data["seenAt"].(time.Time)))

	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), toDocument(bson.M{"_id": oid}).ID)
}

// Runs against a live server when MONGODB_TEST_URI is set.
func TestStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, config.StoreConfig{MongoURI: uri, MongoTimeout: 5 * time.Second})
	require.NoError(t, err)
	db := client.Database("evalue_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	s := NewStore(db)

	require.NoError(t, s.UpsertMerge(ctx, "cart", "u1", domain.KindCart.EmptyPatch()))
	require.NoError(t, s.UpsertMerge(ctx, "cart", "u1", domain.KindCart.EntryPatch("a")))
	require.NoError(t, s.UpsertMerge(ctx, "cart", "u1", domain.KindCart.EntryPatch("b")))
	require.NoError(t, s.DeleteField(ctx, "cart", "u1", domain.KindCart.EntryPath("a")))
	// An empty set merged over a populated one leaves it alone.
	require.NoError(t, s.UpsertMerge(ctx, "cart", "u1", domain.KindCart.EmptyPatch()))

	doc, err := s.GetOne(ctx, "cart", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, domain.MembershipIDs(domain.KindCart, doc))

	_, err = s.GetOne(ctx, "cart", "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docs, err := s.GetAll(ctx, "cart")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
