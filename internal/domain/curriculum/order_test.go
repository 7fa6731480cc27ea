package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSwap_Down(t *testing.T) {
	siblings := []Ordered{{ID: 1, OrderIndex: 1}, {ID: 2, OrderIndex: 2}, {ID: 3, OrderIndex: 3}}

	swap, ok, found := PlanSwap(siblings, 1, DirectionDown)
	require.True(t, found)
	require.True(t, ok)
	assert.Equal(t, Ordered{ID: 1, OrderIndex: 2}, swap.Item)
	assert.Equal(t, Ordered{ID: 2, OrderIndex: 1}, swap.Neighbor)
}

func TestPlanSwap_Up(t *testing.T) {
	siblings := []Ordered{{ID: 1, OrderIndex: 1}, {ID: 2, OrderIndex: 2}, {ID: 3, OrderIndex: 3}}

	swap, ok, found := PlanSwap(siblings, 3, DirectionUp)
	require.True(t, found)
	require.True(t, ok)
	assert.Equal(t, Ordered{ID: 3, OrderIndex: 2}, swap.Item)
	assert.Equal(t, Ordered{ID: 2, OrderIndex: 3}, swap.Neighbor)
}

func TestPlanSwap_Boundaries(t *testing.T) {
	siblings := []Ordered{{ID: 1, OrderIndex: 1}, {ID: 2, OrderIndex: 2}}

	_, ok, found := PlanSwap(siblings, 1, DirectionUp)
	assert.True(t, found)
	assert.False(t, ok, "first item cannot move up")

	_, ok, found = PlanSwap(siblings, 2, DirectionDown)
	assert.True(t, found)
	assert.False(t, ok, "last item cannot move down")

	_, ok, found = PlanSwap([]Ordered{{ID: 7, OrderIndex: 1}}, 7, DirectionDown)
	assert.True(t, found)
	assert.False(t, ok, "single item has no neighbor")
}

func TestPlanSwap_NotFound(t *testing.T) {
	_, ok, found := PlanSwap([]Ordered{{ID: 1, OrderIndex: 1}}, 99, DirectionUp)
	assert.False(t, found)
	assert.False(t, ok)
}

func TestPlanSwap_SkipsGapsAndPicksNearest(t *testing.T) {
	siblings := []Ordered{{ID: 10, OrderIndex: 5}, {ID: 11, OrderIndex: 20}, {ID: 12, OrderIndex: 9}}

	swap, ok, _ := PlanSwap(siblings, 10, DirectionDown)
	require.True(t, ok)
	assert.Equal(t, int64(12), swap.Neighbor.ID)
	assert.Equal(t, 9, swap.Item.OrderIndex)
	assert.Equal(t, 5, swap.Neighbor.OrderIndex)
}

func TestPlanSwap_EqualIndexesAreNotNeighbors(t *testing.T) {
	// Duplicate indexes are strictly neither above nor below each other.
	siblings := []Ordered{{ID: 1, OrderIndex: 1}, {ID: 2, OrderIndex: 1}, {ID: 3, OrderIndex: 2}}

	swap, ok, _ := PlanSwap(siblings, 3, DirectionUp)
	require.True(t, ok)
	assert.Equal(t, int64(2), swap.Neighbor.ID, "largest id wins among equal indexes below")

	_, ok, _ = PlanSwap(siblings, 1, DirectionUp)
	assert.False(t, ok)

	swap, ok, _ = PlanSwap(siblings, 2, DirectionDown)
	require.True(t, ok)
	assert.Equal(t, int64(3), swap.Neighbor.ID)
}

func TestPlanSwap_RoundTripRestoresOrder(t *testing.T) {
	siblings := []Ordered{{ID: 1, OrderIndex: 1}, {ID: 2, OrderIndex: 2}, {ID: 3, OrderIndex: 3}}

	swap, ok, _ := PlanSwap(siblings, 2, DirectionDown)
	require.True(t, ok)
	moved := []Ordered{siblings[0], swap.Item, swap.Neighbor}

	back, ok, _ := PlanSwap(moved, 2, DirectionUp)
	require.True(t, ok)
	assert.Equal(t, Ordered{ID: 2, OrderIndex: 2}, back.Item)
	assert.Equal(t, Ordered{ID: 3, OrderIndex: 3}, back.Neighbor)
}

func TestNextOrderIndex(t *testing.T) {
	assert.Equal(t, 1, NextOrderIndex(nil))
	assert.Equal(t, 4, NextOrderIndex([]Ordered{{ID: 1, OrderIndex: 3}, {ID: 2, OrderIndex: 1}}))
	assert.Equal(t, 0, NextOrderIndex([]Ordered{{ID: 1, OrderIndex: -1}}))
}

func TestScope_Validate(t *testing.T) {
	assert.NoError(t, PartsScope().Validate())
	assert.NoError(t, SectionsScope(3).Validate())
	assert.NoError(t, StepsScope(4).Validate())

	assert.Error(t, SectionsScope(0).Validate())
	assert.Error(t, StepsScope(-1).Validate())
	assert.Error(t, Scope{Level: "chapter"}.Validate())
}
