package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/internship-hub/internal/domain/curriculum"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

func TestGetMigrations_OrderedAndReversible(t *testing.T) {
	migrations := GetMigrations()
	require.Len(t, migrations, 3)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, strings.TrimSpace(m.UpSQL), m.Name)
		assert.NotEmpty(t, strings.TrimSpace(m.DownSQL), m.Name)
	}
	assert.Contains(t, migrations[0].UpSQL, "order_index")
}

func TestScopeQuery(t *testing.T) {
	table, where, notFound, err := scopeQuery(curriculum.PartsScope())
	require.NoError(t, err)
	assert.Equal(t, "parts", table)
	assert.Empty(t, where)
	assert.Equal(t, shared.ErrPartNotFound, notFound)

	table, where, notFound, err = scopeQuery(curriculum.SectionsScope(4))
	require.NoError(t, err)
	assert.Equal(t, "sections", table)
	assert.Equal(t, "WHERE part_id = $1", where)
	assert.Equal(t, shared.ErrSectionNotFound, notFound)

	table, _, notFound, err = scopeQuery(curriculum.StepsScope(9))
	require.NoError(t, err)
	assert.Equal(t, "steps", table)
	assert.Equal(t, shared.ErrStepNotFound, notFound)

	_, _, _, err = scopeQuery(curriculum.StepsScope(0))
	assert.True(t, shared.IsValidation(err))

	_, _, _, err = scopeQuery(curriculum.Scope{Level: "chapter"})
	assert.True(t, shared.IsValidation(err))
}

func TestErrorHelpers(t *testing.T) {
	pgErr := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, IsUniqueViolation(pgErr("23505")))
	assert.True(t, IsForeignKeyViolation(pgErr("23503")))
	assert.True(t, IsTransient(pgErr("40001")))
	assert.True(t, IsTransient(pgErr("40P01")))
	assert.False(t, IsTransient(pgErr("23505")))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.True(t, IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
}

func TestMapResultError(t *testing.T) {
	err := mapResultError("Toggle", &pgconn.PgError{Code: "23503"})
	assert.True(t, shared.IsNotFound(err))

	err = mapResultError("Toggle", errors.New("timeout"))
	assert.False(t, shared.IsNotFound(err))
	assert.ErrorContains(t, err, "timeout")
}

func TestDefaultPoolOptions(t *testing.T) {
	opts := DefaultPoolOptions()
	assert.Positive(t, opts.MaxConns)
	assert.Equal(t, 5, opts.ConnectAttempts)
}

func TestConnection_ClosedRejectsCalls(t *testing.T) {
	conn := &Connection{}
	conn.closed.Store(true)
	ctx := context.Background()

	called := false
	err := conn.WithAdvisoryLock(ctx, importLockID, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrConnectionClosed)
	assert.False(t, called)

	err = NewCurriculumRepository(conn).WithImportLock(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrConnectionClosed)

	assert.ErrorIs(t, conn.Ping(ctx), ErrConnectionClosed)
	assert.ErrorIs(t, conn.QueryRow(ctx, "SELECT 1").Scan(), ErrConnectionClosed)
	conn.Close()
}
