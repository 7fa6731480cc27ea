package curriculum

import (
	"fmt"
)

// Level identifies which level of the hierarchy an ordering scope covers.
type Level string

const (
	LevelPart    Level = "part"
	LevelSection Level = "section"
	LevelStep    Level = "step"
)

// IsValid checks if the level is known.
func (l Level) IsValid() bool {
	return l == LevelPart || l == LevelSection || l == LevelStep
}

// Direction is the reorder direction.
type Direction string

const (
	// DirectionUp moves an item towards a smaller order index.
	DirectionUp Direction = "up"
	// DirectionDown moves an item towards a larger order index.
	DirectionDown Direction = "down"
)

// IsValid checks if the direction is known.
func (d Direction) IsValid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Scope is a set of siblings sharing one dense ordering: all parts, the
// sections of one part, or the steps of one section.
type Scope struct {
	Level    Level
	ParentID int64 // part ID for sections, section ID for steps, unused for parts
}

// PartsScope returns the scope of all parts.
func PartsScope() Scope { return Scope{Level: LevelPart} }

// SectionsScope returns the scope of the sections of one part.
func SectionsScope(partID int64) Scope { return Scope{Level: LevelSection, ParentID: partID} }

// StepsScope returns the scope of the steps of one section.
func StepsScope(sectionID int64) Scope { return Scope{Level: LevelStep, ParentID: sectionID} }

// Validate checks the scope is addressable.
func (s Scope) Validate() error {
	if !s.Level.IsValid() {
		return fmt.Errorf("curriculum: unknown level %q", s.Level)
	}
	if s.Level != LevelPart && s.ParentID <= 0 {
		return fmt.Errorf("curriculum: %s scope requires a parent", s.Level)
	}
	return nil
}

// String returns a readable form used in logs and cache keys.
func (s Scope) String() string {
	if s.Level == LevelPart {
		return string(s.Level)
	}
	return fmt.Sprintf("%s:%d", s.Level, s.ParentID)
}

// Ordered is the (id, order_index) projection of a sibling.
type Ordered struct {
	ID         int64
	OrderIndex int
}

// Swap is a pair of order index assignments that must be written together.
type Swap struct {
	Item     Ordered // item with its new order index
	Neighbor Ordered // neighbor with its new order index
}

// PlanSwap finds the neighbor of itemID in the given direction and returns the
// exchanged assignment. ok is false when the item is at the boundary.
// found is false when itemID is not among siblings.
//
// Up picks the sibling with the largest (order_index, id) strictly below the
// item's order index; down picks the smallest (order_index, id) strictly above.
func PlanSwap(siblings []Ordered, itemID int64, dir Direction) (swap Swap, ok bool, found bool) {
	var item Ordered
	for _, s := range siblings {
		if s.ID == itemID {
			item = s
			found = true
			break
		}
	}
	if !found {
		return Swap{}, false, false
	}

	var neighbor Ordered
	for _, s := range siblings {
		if s.ID == itemID {
			continue
		}
		switch dir {
		case DirectionUp:
			if s.OrderIndex >= item.OrderIndex {
				continue
			}
			if !ok || s.OrderIndex > neighbor.OrderIndex ||
				(s.OrderIndex == neighbor.OrderIndex && s.ID > neighbor.ID) {
				neighbor = s
				ok = true
			}
		case DirectionDown:
			if s.OrderIndex <= item.OrderIndex {
				continue
			}
			if !ok || s.OrderIndex < neighbor.OrderIndex ||
				(s.OrderIndex == neighbor.OrderIndex && s.ID < neighbor.ID) {
				neighbor = s
				ok = true
			}
		}
	}
	if !ok {
		return Swap{}, false, true
	}

	return Swap{
		Item:     Ordered{ID: item.ID, OrderIndex: neighbor.OrderIndex},
		Neighbor: Ordered{ID: neighbor.ID, OrderIndex: item.OrderIndex},
	}, true, true
}

// NextOrderIndex returns max(order_index)+1 over siblings, 1 for an empty scope.
func NextOrderIndex(siblings []Ordered) int {
	if len(siblings) == 0 {
		return 1
	}
	maxIndex := siblings[0].OrderIndex
	for _, s := range siblings[1:] {
		if s.OrderIndex > maxIndex {
			maxIndex = s.OrderIndex
		}
	}
	return maxIndex + 1
}
