package memory

import (
	"context"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// CurriculumRepository implements curriculum.Repository.
type CurriculumRepository struct {
	s *Store
}

var _ curriculum.Repository = (*CurriculumRepository)(nil)

// ListParts returns all parts.
func (r *CurriculumRepository) ListParts(_ context.Context) ([]curriculum.Part, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.parts, func(a, b curriculum.Part) bool { return a.ID < b.ID }), nil
}

// ListSections returns all sections.
func (r *CurriculumRepository) ListSections(_ context.Context) ([]curriculum.Section, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.sections, func(a, b curriculum.Section) bool { return a.ID < b.ID }), nil
}

// ListSteps returns all steps.
func (r *CurriculumRepository) ListSteps(_ context.Context) ([]curriculum.Step, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.steps, func(a, b curriculum.Step) bool { return a.ID < b.ID }), nil
}

// GetStep returns a step by ID.
func (r *CurriculumRepository) GetStep(_ context.Context, id int64) (*curriculum.Step, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.steps[id]
	if !ok {
		return nil, shared.ErrStepNotFound
	}
	return &st, nil
}

// CountSteps returns the number of steps.
func (r *CurriculumRepository) CountSteps(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.steps), nil
}

// CreatePart appends a part.
func (r *CurriculumRepository) CreatePart(_ context.Context, title string) (*curriculum.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := curriculum.Part{
		ID:         r.s.id(),
		Title:      title,
		OrderIndex: curriculum.NextOrderIndex(r.s.siblings(curriculum.PartsScope())),
	}
	r.s.parts[p.ID] = p
	return &p, nil
}

// CreateSection appends a section to its part.
func (r *CurriculumRepository) CreateSection(_ context.Context, sec curriculum.Section) (*curriculum.Section, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.parts[sec.PartID]; !ok {
		return nil, shared.ErrPartNotFound
	}
	sec.ID = r.s.id()
	sec.OrderIndex = curriculum.NextOrderIndex(r.s.siblings(curriculum.SectionsScope(sec.PartID)))
	sec.Steps = nil
	r.s.sections[sec.ID] = sec
	return &sec, nil
}

// WithImportLock runs fn under the store-wide import lock.
func (r *CurriculumRepository) WithImportLock(ctx context.Context, fn func(ctx context.Context) error) error {
	r.s.importMu.Lock()
	defer r.s.importMu.Unlock()
	return fn(ctx)
}

// CreateStep appends a step to its section.
func (r *CurriculumRepository) CreateStep(_ context.Context, st curriculum.Step) (*curriculum.Step, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sec, ok := r.s.sections[st.SectionID]
	if !ok {
		return nil, shared.ErrSectionNotFound
	}
	st.ID = r.s.id()
	st.PartID = sec.PartID
	st.OrderIndex = curriculum.NextOrderIndex(r.s.siblings(curriculum.StepsScope(st.SectionID)))
	r.s.steps[st.ID] = st
	return &st, nil
}

// RenamePart updates a part title.
func (r *CurriculumRepository) RenamePart(_ context.Context, id int64, title string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parts[id]
	if !ok {
		return shared.ErrPartNotFound
	}
	p.Title = title
	r.s.parts[id] = p
	return nil
}

// RenameSection updates a section title.
func (r *CurriculumRepository) RenameSection(_ context.Context, id int64, title string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sec, ok := r.s.sections[id]
	if !ok {
		return shared.ErrSectionNotFound
	}
	sec.Title = title
	r.s.sections[id] = sec
	return nil
}

// RenameStep updates a step title.
func (r *CurriculumRepository) RenameStep(_ context.Context, id int64, title string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.steps[id]
	if !ok {
		return shared.ErrStepNotFound
	}
	st.Title = title
	r.s.steps[id] = st
	return nil
}

// DeletePart deletes a part with its sections, steps and their results.
func (r *CurriculumRepository) DeletePart(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.parts[id]; !ok {
		return shared.ErrPartNotFound
	}
	for secID, sec := range r.s.sections {
		if sec.PartID == id {
			r.s.deleteSection(secID)
		}
	}
	delete(r.s.parts, id)
	return nil
}

// DeleteSection deletes a section with its steps and their results.
func (r *CurriculumRepository) DeleteSection(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sections[id]; !ok {
		return shared.ErrSectionNotFound
	}
	r.s.deleteSection(id)
	return nil
}

// DeleteStep deletes a step and its results.
func (r *CurriculumRepository) DeleteStep(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.steps[id]; !ok {
		return shared.ErrStepNotFound
	}
	r.s.deleteStep(id)
	return nil
}

// Reorder swaps the item with its neighbor under the store lock.
func (r *CurriculumRepository) Reorder(_ context.Context, scope curriculum.Scope, itemID int64, dir curriculum.Direction) (bool, error) {
	if err := scope.Validate(); err != nil {
		return false, shared.WrapError("curriculum", "Reorder", shared.ErrValidation, "invalid ordering scope", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	swap, ok, found := curriculum.PlanSwap(r.s.siblings(scope), itemID, dir)
	if !found {
		switch scope.Level {
		case curriculum.LevelPart:
			return false, shared.ErrPartNotFound
		case curriculum.LevelSection:
			return false, shared.ErrSectionNotFound
		default:
			return false, shared.ErrStepNotFound
		}
	}
	if !ok {
		return false, nil
	}

	r.s.setOrder(scope.Level, swap.Item)
	r.s.setOrder(scope.Level, swap.Neighbor)
	return true, nil
}

// siblings must be called with the lock held.
func (s *Store) siblings(scope curriculum.Scope) []curriculum.Ordered {
	var out []curriculum.Ordered
	switch scope.Level {
	case curriculum.LevelPart:
		for _, p := range s.parts {
			out = append(out, curriculum.Ordered{ID: p.ID, OrderIndex: p.OrderIndex})
		}
	case curriculum.LevelSection:
		for _, sec := range s.sections {
			if sec.PartID == scope.ParentID {
				out = append(out, curriculum.Ordered{ID: sec.ID, OrderIndex: sec.OrderIndex})
			}
		}
	case curriculum.LevelStep:
		for _, st := range s.steps {
			if st.SectionID == scope.ParentID {
				out = append(out, curriculum.Ordered{ID: st.ID, OrderIndex: st.OrderIndex})
			}
		}
	}
	return out
}

func (s *Store) setOrder(level curriculum.Level, o curriculum.Ordered) {
	switch level {
	case curriculum.LevelPart:
		p := s.parts[o.ID]
		p.OrderIndex = o.OrderIndex
		s.parts[o.ID] = p
	case curriculum.LevelSection:
		sec := s.sections[o.ID]
		sec.OrderIndex = o.OrderIndex
		s.sections[o.ID] = sec
	case curriculum.LevelStep:
		st := s.steps[o.ID]
		st.OrderIndex = o.OrderIndex
		s.steps[o.ID] = st
	}
}

func (s *Store) deleteSection(id int64) {
	for stepID, st := range s.steps {
		if st.SectionID == id {
			s.deleteStep(stepID)
		}
	}
	delete(s.sections, id)
}

func (s *Store) deleteStep(id int64) {
	for k := range s.results {
		if k.stepID == id {
			delete(s.results, k)
		}
	}
	delete(s.steps, id)
}

// SetOrderIndex overwrites an order index directly. It exists for tests that
// need gaps or duplicates in a scope.
func (s *Store) SetOrderIndex(level curriculum.Level, id int64, orderIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setOrder(level, curriculum.Ordered{ID: id, OrderIndex: orderIndex})
}
