package memstore

import (
	"context"
	"testing"

	"evalue-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpsertMergeKeepsSiblings(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.UpsertMerge(ctx, "cart", "u1", domain.KindCart.EntryPatch("a")))
	require.NoError(t, s.UpsertMerge(ctx, "cart", "u1", domain.KindCart.EntryPatch("b")))

	doc, err := s.GetOne(ctx, "cart", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, domain.MembershipIDs(domain.KindCart, doc))
}

func TestStore_EmptyMapDoesNotReplaceSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.UpsertMerge(ctx, "cart", "u1", domain.KindCart.EntryPatch("a")))
	require.NoError(t, s.UpsertMerge(ctx, "cart", "u1", domain.KindCart.EmptyPatch()))

	doc, err := s.GetOne(ctx, "cart", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, domain.MembershipIDs(domain.KindCart, doc))

	require.NoError(t, s.UpsertMerge(ctx, "cart", "u2", domain.KindCart.EmptyPatch()))
	doc, err = s.GetOne(ctx, "cart", "u2")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, doc.Data["cart"])
}

func TestStore_GetOneReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.UpsertMerge(ctx, "products", "p1", map[string]any{"title": "Cap"}))

	doc, err := s.GetOne(ctx, "products", "p1")
	require.NoError(t, err)
	doc.Data["title"] = "changed"

	doc, err = s.GetOne(ctx, "products", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Cap", doc.Data["title"])
}

func TestStore_GetAllIsSortedByID(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.UpsertMerge(ctx, "products", id, map[string]any{"title": id}))
	}

	docs, err := s.GetAll(ctx, "products")
	require.NoError(t, err)
	got := make([]string, len(docs))
	for i, d := range docs {
		got[i] = d.ID
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)

	docs, err = s.GetAll(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_DeleteField(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.UpsertMerge(ctx, "favorites", "u1", domain.KindFavorites.EntryPatch("a")))

	require.NoError(t, s.DeleteField(ctx, "favorites", "u1", domain.FieldPath{"favorites", "missing"}))
	require.NoError(t, s.DeleteField(ctx, "favorites", "nobody", domain.FieldPath{"favorites", "a"}))
	require.NoError(t, s.DeleteField(ctx, "favorites", "u1", domain.FieldPath{"favorites", "a"}))

	doc, err := s.GetOne(ctx, "favorites", "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, doc.Data["favorites"])

	_, err = s.GetOne(ctx, "favorites", "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_CanceledContextIsUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()

	_, err := s.GetOne(ctx, "cart", "u1")
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.ErrorIs(t, s.UpsertMerge(ctx, "cart", "u1", nil), domain.ErrRemoteUnavailable)
}
