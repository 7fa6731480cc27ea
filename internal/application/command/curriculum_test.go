package command_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/internship-hub/internal/application/command"
	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

type countingCache struct {
	invalidations int
}

func (c *countingCache) GetTree(context.Context) (curriculum.Tree, error) { return nil, errBoom }

func (c *countingCache) Generation(context.Context) (int64, error) { return int64(c.invalidations), nil }

func (c *countingCache) SetTree(context.Context, curriculum.Tree, int64, time.Duration) (bool, error) {
	return false, nil
}

func (c *countingCache) InvalidateTree(context.Context) error {
	c.invalidations++
	return errBoom
}

func TestCurriculum_CreateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx

	_, err := e.catalog.CreatePart(ctx, command.CreatePartCommand{Title: "   "})
	assert.True(t, shared.IsValidation(err))

	_, err = e.catalog.CreatePart(ctx, command.CreatePartCommand{Title: strings.Repeat("x", 256)})
	assert.True(t, shared.IsValidation(err))

	part, err := e.catalog.CreatePart(ctx, command.CreatePartCommand{Title: "  Basics  "})
	require.NoError(t, err)
	assert.Equal(t, "Basics", part.Title)

	bad := "not a url"
	_, err = e.catalog.CreateSection(ctx, command.CreateSectionCommand{PartID: part.ID, Title: "S", ReferenceLink: &bad})
	assert.True(t, shared.IsValidation(err))

	zero := 0
	_, err = e.catalog.CreateSection(ctx, command.CreateSectionCommand{PartID: part.ID, Title: "S", DurationDays: &zero})
	assert.True(t, shared.IsValidation(err))

	blank := "  "
	sec, err := e.catalog.CreateSection(ctx, command.CreateSectionCommand{PartID: part.ID, Title: "S", ReferenceLink: &blank})
	require.NoError(t, err)
	assert.Nil(t, sec.ReferenceLink, "blank link is dropped")

	_, err = e.catalog.CreateStep(ctx, command.CreateStepCommand{SectionID: sec.ID, Title: "x", Kind: "audio"})
	assert.True(t, shared.IsValidation(err))

	step, err := e.catalog.CreateStep(ctx, command.CreateStepCommand{SectionID: sec.ID, Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, curriculum.StepKindSimple, step.Kind)

	_, err = e.catalog.CreateSection(ctx, command.CreateSectionCommand{PartID: 999, Title: "S"})
	assert.ErrorIs(t, err, shared.ErrPartNotFound)
}

func TestCurriculum_RenameAndDelete(t *testing.T) {
	e := newEnv(t)
	cache := &countingCache{}
	handler := command.NewCurriculumHandler(e.store.Curriculum(), cache, discard)

	part, err := handler.CreatePart(e.ctx, command.CreatePartCommand{Title: "Basics"})
	require.NoError(t, err)

	require.NoError(t, handler.Rename(e.ctx, command.RenameCommand{Level: curriculum.LevelPart, ID: part.ID, Title: "Intro"}))
	parts, err := e.store.Curriculum().ListParts(e.ctx)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "Intro", parts[0].Title)

	err = handler.Rename(e.ctx, command.RenameCommand{Level: "chapter", ID: part.ID, Title: "x"})
	assert.True(t, shared.IsValidation(err))

	err = handler.Delete(e.ctx, command.DeleteCommand{Level: curriculum.LevelStep, ID: 999})
	assert.ErrorIs(t, err, shared.ErrStepNotFound)

	require.NoError(t, handler.Delete(e.ctx, command.DeleteCommand{Level: curriculum.LevelPart, ID: part.ID}))
	assert.Equal(t, 3, cache.invalidations, "every successful write invalidates, cache errors are ignored")
}

func TestReorder_SwapsNeighbors(t *testing.T) {
	e := newEnv(t)
	cache := &countingCache{}
	reorder := command.NewReorderHandler(e.store.Curriculum(), cache, discard)
	steps := e.seedSteps(3, curriculum.StepKindSimple)
	last, err := e.store.Curriculum().GetStep(e.ctx, steps[2])
	require.NoError(t, err)
	sectionID := last.SectionID

	res, err := reorder.Handle(e.ctx, command.ReorderCommand{
		Level:     curriculum.LevelStep,
		ParentID:  sectionID,
		ItemID:    steps[2],
		Direction: curriculum.DirectionUp,
	})
	require.NoError(t, err)
	assert.True(t, res.Moved)

	tree, err := e.tree.Handle(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{steps[0], steps[2], steps[1]}, tree.StepIDs())

	res, err = reorder.Handle(e.ctx, command.ReorderCommand{
		Level:     curriculum.LevelStep,
		ParentID:  sectionID,
		ItemID:    steps[0],
		Direction: curriculum.DirectionUp,
	})
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, 1, cache.invalidations, "no-op move keeps the cache")
}

func TestReorder_Validation(t *testing.T) {
	e := newEnv(t)
	reorder := command.NewReorderHandler(e.store.Curriculum(), nil, discard)

	_, err := reorder.Handle(e.ctx, command.ReorderCommand{Level: curriculum.LevelPart, ItemID: 1, Direction: "left"})
	assert.True(t, shared.IsValidation(err))

	_, err = reorder.Handle(e.ctx, command.ReorderCommand{Level: curriculum.LevelSection, ItemID: 1, Direction: curriculum.DirectionUp})
	assert.True(t, shared.IsValidation(err), "sections need a parent part")

	_, err = reorder.Handle(e.ctx, command.ReorderCommand{Level: curriculum.LevelPart, ItemID: 1, Direction: curriculum.DirectionUp})
	assert.ErrorIs(t, err, shared.ErrPartNotFound)
}
