package curriculum

import (
	"context"
	"time"
)

// Repository defines the interface for curriculum persistence.
// Create methods assign the next order index of the item's scope and return
// the stored item. Delete methods cascade to children.
type Repository interface {
	// Read side

	// ListParts returns all parts (unsorted, without children).
	ListParts(ctx context.Context) ([]Part, error)

	// ListSections returns all sections (unsorted, without children).
	ListSections(ctx context.Context) ([]Section, error)

	// ListSteps returns all steps (unsorted).
	ListSteps(ctx context.Context) ([]Step, error)

	// GetStep returns a step by ID.
	GetStep(ctx context.Context, id int64) (*Step, error)

	// CountSteps returns the number of steps in the whole catalog.
	CountSteps(ctx context.Context) (int, error)

	// Write side

	CreatePart(ctx context.Context, title string) (*Part, error)
	CreateSection(ctx context.Context, s Section) (*Section, error)
	CreateStep(ctx context.Context, s Step) (*Step, error)

	RenamePart(ctx context.Context, id int64, title string) error
	RenameSection(ctx context.Context, id int64, title string) error
	RenameStep(ctx context.Context, id int64, title string) error

	DeletePart(ctx context.Context, id int64) error
	DeleteSection(ctx context.Context, id int64) error
	DeleteStep(ctx context.Context, id int64) error

	// Reorder swaps itemID with its neighbor in the given direction within
	// scope. Both writes apply together or not at all. Returns false when
	// the item is at the boundary of the scope.
	Reorder(ctx context.Context, scope Scope, itemID int64, dir Direction) (bool, error)

	// WithImportLock runs fn while holding a catalog-wide lock shared by all
	// processes, so bulk imports never interleave.
	WithImportLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// TreeCache caches the assembled tree. Implementations may be absent; callers
// treat every cache error as a miss.
//
// Refills are guarded by a generation counter: a reader takes Generation
// before loading from the store and passes it to SetTree, which stores the
// tree only if no InvalidateTree happened in between.
type TreeCache interface {
	GetTree(ctx context.Context) (Tree, error)
	Generation(ctx context.Context) (int64, error)
	SetTree(ctx context.Context, tree Tree, generation int64, ttl time.Duration) (stored bool, err error)
	InvalidateTree(ctx context.Context) error
}
