// Package curriculum contains the Part -> Section -> Step hierarchy of the
// onboarding program and the ordering rules shared by all of its levels.
// This is a pure domain layer: storage is reached through Repository.
package curriculum

import (
	"sort"
)

// StepKind determines how completion of a step is recorded.
type StepKind string

const (
	// StepKindSimple is completed by a trainer toggle.
	StepKindSimple StepKind = "simple"
	// StepKindVideo is completed by attaching a video.
	StepKindVideo StepKind = "video"
	// StepKindPhoto is completed by attaching a photo.
	StepKindPhoto StepKind = "photo"
)

// IsValid checks if the kind is one of the known kinds.
func (k StepKind) IsValid() bool {
	switch k {
	case StepKindSimple, StepKindVideo, StepKindPhoto:
		return true
	}
	return false
}

// IsMedia reports whether completion is recorded through a media attachment.
func (k StepKind) IsMedia() bool {
	return k == StepKindVideo || k == StepKindPhoto
}

// Part is a top-level curriculum grouping.
type Part struct {
	ID         int64
	Title      string
	OrderIndex int

	Sections []*Section
}

// Section belongs to exactly one Part.
type Section struct {
	ID            int64
	PartID        int64
	Title         string
	OrderIndex    int
	ReferenceLink *string
	DurationDays  *int

	Steps []*Step
}

// Step is the atomic unit of completion.
type Step struct {
	ID                     int64
	PartID                 int64
	SectionID              int64
	Title                  string
	Kind                   StepKind
	OrderIndex             int
	ReferenceLink          *string
	PlannedDurationMinutes *int
}

// Tree is the whole catalog, sorted by (order_index, id) at every level.
type Tree []*Part

// StepIDs returns the IDs of every step in the tree in display order.
func (t Tree) StepIDs() []int64 {
	var ids []int64
	for _, p := range t {
		ids = append(ids, p.StepIDs()...)
	}
	return ids
}

// Part returns the part with the given ID, or nil.
func (t Tree) Part(id int64) *Part {
	for _, p := range t {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// StepIDs returns the IDs of every step of the part in display order.
func (p *Part) StepIDs() []int64 {
	var ids []int64
	for _, s := range p.Sections {
		for _, st := range s.Steps {
			ids = append(ids, st.ID)
		}
	}
	return ids
}

// StepIDs returns the IDs of the section's steps in display order.
func (s *Section) StepIDs() []int64 {
	ids := make([]int64, 0, len(s.Steps))
	for _, st := range s.Steps {
		ids = append(ids, st.ID)
	}
	return ids
}

// BuildTree assembles flat rows into a sorted tree. Sections and steps whose
// parent is missing are dropped.
func BuildTree(parts []Part, sections []Section, steps []Step) Tree {
	tree := make(Tree, 0, len(parts))
	partByID := make(map[int64]*Part, len(parts))
	for i := range parts {
		p := parts[i]
		p.Sections = nil
		partByID[p.ID] = &p
		tree = append(tree, &p)
	}

	sectionByID := make(map[int64]*Section, len(sections))
	for i := range sections {
		s := sections[i]
		s.Steps = nil
		part, ok := partByID[s.PartID]
		if !ok {
			continue
		}
		sectionByID[s.ID] = &s
		part.Sections = append(part.Sections, &s)
	}

	for i := range steps {
		st := steps[i]
		section, ok := sectionByID[st.SectionID]
		if !ok {
			continue
		}
		section.Steps = append(section.Steps, &st)
	}

	sortByOrder(tree, func(p *Part) (int, int64) { return p.OrderIndex, p.ID })
	for _, p := range tree {
		sortByOrder(p.Sections, func(s *Section) (int, int64) { return s.OrderIndex, s.ID })
		for _, s := range p.Sections {
			sortByOrder(s.Steps, func(st *Step) (int, int64) { return st.OrderIndex, st.ID })
		}
	}

	return tree
}

func sortByOrder[T any](items []T, key func(T) (int, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		oi, ii := key(items[i])
		oj, ij := key(items[j])
		if oi != oj {
			return oi < oj
		}
		return ii < ij
	})
}
