package store

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purificadora/inventario/internal/model"
)

func TestAdjustQuantityOfficeScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := mustUser(t, s, "Admin", "a@example.com", model.RoleAdmin)
	id := mustItem(t, s, model.Office, map[string]any{"nombre": "Papel", "cantidad": float64(10)}, admin.ID)

	qty, err := s.AdjustQuantity(ctx, model.Office, id, model.Adjustment{Direction: model.DirectionOut, Quantity: 4, Notes: "Movimiento: salida"}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, qty)

	_, err = s.AdjustQuantity(ctx, model.Office, id, model.Adjustment{Direction: model.DirectionOut, Quantity: 100}, admin.ID)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	item, err := s.GetItem(ctx, model.Office, id)
	require.NoError(t, err)
	assert.Equal(t, 6, item.Quantity, "rejected withdrawal changes nothing")

	movements, err := s.ListMovements(ctx, MovementFilter{Category: model.Office.Name, ItemID: id})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, model.DirectionOut, movements[0].Direction)
	assert.Equal(t, 4, movements[0].Quantity)
	assert.Equal(t, model.DirectionIn, movements[1].Direction)
	assert.Equal(t, 10, movements[1].Quantity)
}

func TestAdjustQuantityExactStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := mustUser(t, s, "Admin", "a@example.com", model.RoleAdmin)
	id := mustItem(t, s, model.Cleaning, map[string]any{"producto": "Cloro", "cantidad": float64(3)}, admin.ID)

	qty, err := s.AdjustQuantity(ctx, model.Cleaning, id, model.Adjustment{Direction: model.DirectionOut, Quantity: 3}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestAdjustQuantityNotFound(t *testing.T) {
	s := newTestStore(t)
	admin := mustUser(t, s, "Admin", "a@example.com", model.RoleAdmin)

	_, err := s.AdjustQuantity(context.Background(), model.Office, 42, model.Adjustment{Direction: model.DirectionIn, Quantity: 1}, admin.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustQuantityRejectsBadInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := mustUser(t, s, "Admin", "a@example.com", model.RoleAdmin)
	id := mustItem(t, s, model.Office, map[string]any{"nombre": "Papel", "cantidad": float64(1)}, admin.ID)

	_, err := s.AdjustQuantity(ctx, model.Office, id, model.Adjustment{Direction: model.DirectionIn, Quantity: 0}, admin.ID)
	assert.Error(t, err)
	_, err = s.AdjustQuantity(ctx, model.Office, id, model.Adjustment{Direction: "prestamo", Quantity: 1}, admin.ID)
	assert.Error(t, err)
}

// The stored quantity always equals the sum of the item's movements, and
// never goes negative, for any sequence of adjustments.
func TestQuantityMatchesMovementSum(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := mustUser(t, s, "Admin", "a@example.com", model.RoleAdmin)
	id := mustItem(t, s, model.Jugs, map[string]any{"tipo": "sello", "cantidad": float64(7)}, admin.ID)

	rng := rand.New(rand.NewSource(1))
	for range 60 {
		adj := model.Adjustment{Direction: model.DirectionIn, Quantity: rng.Intn(10) + 1}
		if rng.Intn(2) == 0 {
			adj.Direction = model.DirectionOut
		}
		qty, err := s.AdjustQuantity(ctx, model.Jugs, id, adj, admin.ID)
		if err != nil {
			require.ErrorIs(t, err, ErrInsufficientStock)
			continue
		}
		assert.GreaterOrEqual(t, qty, 0)
	}

	item, err := s.GetItem(ctx, model.Jugs, id)
	require.NoError(t, err)

	movements, err := s.ListMovements(ctx, MovementFilter{ItemID: id, Limit: MaxMovementLimit})
	require.NoError(t, err)
	sum := 0
	for _, m := range movements {
		if m.Direction == model.DirectionIn {
			sum += m.Quantity
		} else {
			sum -= m.Quantity
		}
	}
	assert.Equal(t, item.Quantity, sum)
}
