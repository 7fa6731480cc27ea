package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
	"github.com/alem-hub/internship-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CURRICULUM REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CurriculumRepository implements curriculum.Repository for PostgreSQL.
type CurriculumRepository struct {
	conn *Connection
}

// NewCurriculumRepository creates a new CurriculumRepository.
func NewCurriculumRepository(conn *Connection) *CurriculumRepository {
	return &CurriculumRepository{conn: conn}
}

// importLockID keys the advisory lock held for the duration of an import.
const importLockID = 7_340_212

// WithImportLock serializes imports across processes with an advisory lock.
func (r *CurriculumRepository) WithImportLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.conn.WithAdvisoryLock(ctx, importLockID, fn)
}

// ─────────────────────────────────────────────────────────────────────────────
// Read side
// ─────────────────────────────────────────────────────────────────────────────

// ListParts returns all parts.
func (r *CurriculumRepository) ListParts(ctx context.Context) ([]curriculum.Part, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, title, order_index FROM parts`)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer rows.Close()

	var parts []curriculum.Part
	for rows.Next() {
		var p curriculum.Part
		if err := rows.Scan(&p.ID, &p.Title, &p.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// ListSections returns all sections.
func (r *CurriculumRepository) ListSections(ctx context.Context) ([]curriculum.Section, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, part_id, title, order_index, reference_link, duration_days
		FROM sections
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	var sections []curriculum.Section
	for rows.Next() {
		var s curriculum.Section
		if err := rows.Scan(&s.ID, &s.PartID, &s.Title, &s.OrderIndex, &s.ReferenceLink, &s.DurationDays); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

const stepColumns = `id, part_id, section_id, title, kind, order_index, reference_link, planned_duration_minutes`

// ListSteps returns all steps.
func (r *CurriculumRepository) ListSteps(ctx context.Context) ([]curriculum.Step, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+stepColumns+` FROM steps`)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []curriculum.Step
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, *st)
	}
	return steps, rows.Err()
}

// GetStep returns a step by ID.
func (r *CurriculumRepository) GetStep(ctx context.Context, id int64) (*curriculum.Step, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+stepColumns+` FROM steps WHERE id = $1`, id)
	st, err := scanStep(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStepNotFound
		}
		return nil, err
	}
	return st, nil
}

// CountSteps returns the number of steps in the catalog.
func (r *CurriculumRepository) CountSteps(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM steps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count steps: %w", err)
	}
	return n, nil
}

func scanStep(row pgx.Row) (*curriculum.Step, error) {
	var st curriculum.Step
	var kind string
	err := row.Scan(&st.ID, &st.PartID, &st.SectionID, &st.Title, &kind, &st.OrderIndex,
		&st.ReferenceLink, &st.PlannedDurationMinutes)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan step: %w", err)
	}
	st.Kind = curriculum.StepKind(kind)
	return &st, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Write side
// ─────────────────────────────────────────────────────────────────────────────

// CreatePart appends a part at the end of the parts scope.
func (r *CurriculumRepository) CreatePart(ctx context.Context, title string) (*curriculum.Part, error) {
	p := &curriculum.Part{Title: title}
	err := r.conn.QueryRow(ctx, `
		INSERT INTO parts (title, order_index)
		VALUES ($1, (SELECT COALESCE(MAX(order_index), 0) + 1 FROM parts))
		RETURNING id, order_index
	`, title).Scan(&p.ID, &p.OrderIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to create part: %w", err)
	}
	return p, nil
}

// CreateSection appends a section at the end of its part.
func (r *CurriculumRepository) CreateSection(ctx context.Context, s curriculum.Section) (*curriculum.Section, error) {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO sections (part_id, title, order_index, reference_link, duration_days)
		SELECT p.id, $2,
			(SELECT COALESCE(MAX(order_index), 0) + 1 FROM sections WHERE part_id = p.id),
			$3, $4
		FROM parts p
		WHERE p.id = $1
		RETURNING id, order_index
	`, s.PartID, s.Title, s.ReferenceLink, s.DurationDays).Scan(&s.ID, &s.OrderIndex)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPartNotFound
		}
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	s.Steps = nil
	return &s, nil
}

// CreateStep appends a step at the end of its section. PartID is taken from
// the section.
func (r *CurriculumRepository) CreateStep(ctx context.Context, st curriculum.Step) (*curriculum.Step, error) {
	err := r.conn.QueryRow(ctx, `
		INSERT INTO steps (part_id, section_id, title, kind, order_index, reference_link, planned_duration_minutes)
		SELECT s.part_id, s.id, $2, $3,
			(SELECT COALESCE(MAX(order_index), 0) + 1 FROM steps WHERE section_id = s.id),
			$4, $5
		FROM sections s
		WHERE s.id = $1
		RETURNING id, part_id, order_index
	`, st.SectionID, st.Title, string(st.Kind), st.ReferenceLink, st.PlannedDurationMinutes).
		Scan(&st.ID, &st.PartID, &st.OrderIndex)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to create step: %w", err)
	}
	return &st, nil
}

// RenamePart updates a part title.
func (r *CurriculumRepository) RenamePart(ctx context.Context, id int64, title string) error {
	return r.execOne(ctx, `UPDATE parts SET title = $2 WHERE id = $1`, shared.ErrPartNotFound, id, title)
}

// RenameSection updates a section title.
func (r *CurriculumRepository) RenameSection(ctx context.Context, id int64, title string) error {
	return r.execOne(ctx, `UPDATE sections SET title = $2 WHERE id = $1`, shared.ErrSectionNotFound, id, title)
}

// RenameStep updates a step title.
func (r *CurriculumRepository) RenameStep(ctx context.Context, id int64, title string) error {
	return r.execOne(ctx, `UPDATE steps SET title = $2 WHERE id = $1`, shared.ErrStepNotFound, id, title)
}

// DeletePart deletes a part with its sections and steps.
func (r *CurriculumRepository) DeletePart(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM parts WHERE id = $1`, shared.ErrPartNotFound, id)
}

// DeleteSection deletes a section with its steps.
func (r *CurriculumRepository) DeleteSection(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM sections WHERE id = $1`, shared.ErrSectionNotFound, id)
}

// DeleteStep deletes a step and its results.
func (r *CurriculumRepository) DeleteStep(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM steps WHERE id = $1`, shared.ErrStepNotFound, id)
}

func (r *CurriculumRepository) execOne(ctx context.Context, query string, notFound error, args ...any) error {
	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write curriculum: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Ordering
// ─────────────────────────────────────────────────────────────────────────────

// Reorder swaps the item with its neighbor in one transaction. Sibling rows
// are locked so concurrent reorders in the same scope serialize.
func (r *CurriculumRepository) Reorder(ctx context.Context, scope curriculum.Scope, itemID int64, dir curriculum.Direction) (bool, error) {
	table, where, notFound, err := scopeQuery(scope)
	if err != nil {
		return false, err
	}

	// Deadlocks between concurrent reorders abort the whole transaction,
	// so the swap is replanned from fresh siblings on retry.
	var moved bool
	err = retry.Transaction(IsTransient).Do(ctx, func(ctx context.Context) error {
		moved = false
		return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
			siblings, err := lockSiblings(ctx, tx, table, where, scope.ParentID)
			if err != nil {
				return err
			}

			swap, ok, found := curriculum.PlanSwap(siblings, itemID, dir)
			if !found {
				return notFound
			}
			if !ok {
				return nil
			}

			update := fmt.Sprintf(`UPDATE %s SET order_index = $2 WHERE id = $1`, table)
			if _, err := tx.Exec(ctx, update, swap.Item.ID, swap.Item.OrderIndex); err != nil {
				return fmt.Errorf("failed to move item: %w", err)
			}
			if _, err := tx.Exec(ctx, update, swap.Neighbor.ID, swap.Neighbor.OrderIndex); err != nil {
				return fmt.Errorf("failed to move neighbor: %w", err)
			}
			moved = true
			return nil
		})
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

func scopeQuery(scope curriculum.Scope) (table, where string, notFound error, err error) {
	if err := scope.Validate(); err != nil {
		return "", "", nil, shared.WrapError("curriculum", "Reorder", shared.ErrValidation, "invalid ordering scope", err)
	}
	switch scope.Level {
	case curriculum.LevelPart:
		return "parts", "", shared.ErrPartNotFound, nil
	case curriculum.LevelSection:
		return "sections", "WHERE part_id = $1", shared.ErrSectionNotFound, nil
	default:
		return "steps", "WHERE section_id = $1", shared.ErrStepNotFound, nil
	}
}

func lockSiblings(ctx context.Context, q Querier, table, where string, parentID int64) ([]curriculum.Ordered, error) {
	query := fmt.Sprintf(`SELECT id, order_index FROM %s %s ORDER BY order_index, id FOR UPDATE`, table, where)

	var args []any
	if where != "" {
		args = append(args, parentID)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load siblings: %w", err)
	}
	defer rows.Close()

	var siblings []curriculum.Ordered
	for rows.Next() {
		var o curriculum.Ordered
		if err := rows.Scan(&o.ID, &o.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan sibling: %w", err)
		}
		siblings = append(siblings, o)
	}
	return siblings, rows.Err()
}
