package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repository"
)

type fakeStore struct {
	items map[primitive.ObjectID]*models.CartItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[primitive.ObjectID]*models.CartItem{}}
}

func (f *fakeStore) Add(_ context.Context, item *models.CartItem) (*models.CartItem, error) {
	for _, existing := range f.items {
		if existing.UserID != nil && *existing.UserID == *item.UserID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			return existing, nil
		}
	}
	item.ID = primitive.NewObjectID()
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.CartItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, apperr.NotFound("cart item %s not found", id.Hex())
	}
	return item, nil
}

func (f *fakeStore) ListByUser(context.Context, primitive.ObjectID) ([]models.CartItem, error) {
	return nil, nil
}

func (f *fakeStore) Update(_ context.Context, id primitive.ObjectID, patch repository.CartPatch) (*models.CartItem, error) {
	item := f.items[id]
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	return item, nil
}

func (f *fakeStore) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.items, id)
	return nil
}

func (f *fakeStore) ReplaceForUser(_ context.Context, userID primitive.ObjectID, items []models.CartItem) ([]models.CartItem, error) {
	// mirrors the unique (userId, productId) index
	products := map[string]bool{}
	for _, item := range items {
		if products[item.ProductID] {
			return nil, apperr.Conflict("duplicate cart line for product %q", item.ProductID)
		}
		products[item.ProductID] = true
	}
	for id, item := range f.items {
		if item.UserID != nil && *item.UserID == userID {
			delete(f.items, id)
		}
	}
	for i := range items {
		items[i].ID = primitive.NewObjectID()
		items[i].UserID = &userID
		cp := items[i]
		f.items[cp.ID] = &cp
	}
	return items, nil
}

func intPtr(v int) *int { return &v }

func TestAddIncrementsQuantity(t *testing.T) {
	s := NewService(newFakeStore(), zap.NewNop())
	user := primitive.NewObjectID()
	ctx := context.Background()

	first, err := s.Add(ctx, user, ItemInput{ProductID: "p1", ProductName: "Phone", Price: 100, Quantity: 1})
	require.NoError(t, err)
	second, err := s.Add(ctx, user, ItemInput{ProductID: "p1", ProductName: "Phone", Price: 100, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	_, err = s.Add(ctx, user, ItemInput{ProductID: "p2", ProductName: "Case", Quantity: 0})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestOwnerOnlyMutations(t *testing.T) {
	store := newFakeStore()
	s := NewService(store, zap.NewNop())
	owner, stranger := primitive.NewObjectID(), primitive.NewObjectID()
	ctx := context.Background()

	item, err := s.Add(ctx, owner, ItemInput{ProductID: "p1", ProductName: "Phone", Quantity: 1})
	require.NoError(t, err)

	_, err = s.Update(ctx, stranger, item.ID, repository.CartPatch{Quantity: intPtr(5)})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	err = s.Remove(ctx, stranger, item.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = s.Get(ctx, stranger, item.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = s.Update(ctx, owner, item.ID, repository.CartPatch{Quantity: intPtr(0)})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	updated, err := s.Update(ctx, owner, item.ID, repository.CartPatch{Quantity: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	require.NoError(t, s.Remove(ctx, owner, item.ID))
	assert.Empty(t, store.items)

	err = s.Remove(ctx, owner, item.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGuestItemIsNeverOwned(t *testing.T) {
	store := newFakeStore()
	guestItem := &models.CartItem{ID: primitive.NewObjectID(), ProductName: "Guest"}
	store.items[guestItem.ID] = guestItem
	s := NewService(store, zap.NewNop())

	_, err := s.Get(context.Background(), primitive.NewObjectID(), guestItem.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestSyncReplacesCart(t *testing.T) {
	store := newFakeStore()
	s := NewService(store, zap.NewNop())
	user := primitive.NewObjectID()
	ctx := context.Background()

	_, err := s.Add(ctx, user, ItemInput{ProductID: "old", ProductName: "Old", Quantity: 1})
	require.NoError(t, err)

	synced, err := s.Sync(ctx, user, []ItemInput{
		{ProductID: "p1", ProductName: "Phone", Quantity: 1},
		{ProductID: "p2", ProductName: "Case", Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, synced, 2)
	assert.Len(t, store.items, 2)
	for _, item := range store.items {
		assert.NotEqual(t, "old", item.ProductID)
	}
}

func TestSyncMergesDuplicateProducts(t *testing.T) {
	store := newFakeStore()
	s := NewService(store, zap.NewNop())
	user := primitive.NewObjectID()

	synced, err := s.Sync(context.Background(), user, []ItemInput{
		{ProductID: "p1", ProductName: "Phone", Price: 300, Quantity: 1},
		{ProductID: "p2", ProductName: "Case", Quantity: 2},
		{ProductID: " p1 ", ProductName: "Phone again", Price: 999, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, synced, 2)
	assert.Equal(t, "p1", synced[0].ProductID)
	assert.Equal(t, 4, synced[0].Quantity)
	assert.Equal(t, "Phone", synced[0].ProductName)
	assert.Equal(t, 300.0, synced[0].Price)
	assert.Equal(t, 2, synced[1].Quantity)
	assert.Len(t, store.items, 2)
}
