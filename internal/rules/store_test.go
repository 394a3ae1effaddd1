package rules

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/staffquote/internal/db"
	"github.com/Simplici0/staffquote/internal/migrations"
	"github.com/Simplici0/staffquote/internal/pricing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "rules-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(context.Background(), database))
	return database
}

func TestStore_UpsertListGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	for _, r := range pricing.DefaultRules() {
		require.NoError(t, store.Upsert(ctx, r))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(pricing.DefaultRules()))
	assert.Equal(t, "cct-limpeza-curitiba", list[0].ID)

	got, err := store.Get(ctx, "cct-limpeza-curitiba")
	require.NoError(t, err)
	assert.Equal(t, pricing.DefaultRules()[1], got)
}

func TestStore_UpsertReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	rule := pricing.Rule{ID: "sc-cleaning", State: "SC", Function: pricing.FunctionCleaning, WageFloor: 1700}
	require.NoError(t, store.Upsert(ctx, rule))
	rule.WageFloor = 1800
	require.NoError(t, store.Upsert(ctx, rule))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1800.0, list[0].WageFloor)
}

func TestStore_Deactivate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore(newTestDB(t))

	rule := pricing.Rule{ID: "sc-cleaning", State: "SC", Function: pricing.FunctionCleaning}
	require.NoError(t, store.Upsert(ctx, rule))
	require.NoError(t, store.Deactivate(ctx, rule.ID))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.Get(ctx, rule.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, store.Deactivate(ctx, "missing"), ErrNotFound)
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()
	_, err := NewStore(newTestDB(t)).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpsertRejectsInvalidRules(t *testing.T) {
	t.Parallel()
	store := NewStore(newTestDB(t))

	for _, r := range []pricing.Rule{
		{Function: pricing.FunctionCleaning},
		{ID: "no-function"},
		{ID: "negative", Function: pricing.FunctionCleaning, WageFloor: -1},
		{ID: "blank-role", Function: pricing.FunctionCleaning, Roles: []pricing.RoleEntry{{WageFloor: 10}}},
		{ID: "unhealthy-no-grade", Function: pricing.FunctionGardening, AdditionalPay: pricing.RuleAdditionalPay{Unhealthy: true}},
		{ID: "unhealthy-grade-15", Function: pricing.FunctionGardening, AdditionalPay: pricing.RuleAdditionalPay{Unhealthy: true, UnhealthyGrade: 15}},
		{ID: "bad-basis", Function: pricing.FunctionGardening, AdditionalPay: pricing.RuleAdditionalPay{Basis: "GROSS"}},
	} {
		assert.ErrorIs(t, store.Upsert(context.Background(), r), ErrInvalidRule, r.ID)
	}
}

func TestStore_ListDecodeFailure(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, payload")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payload"}).AddRow("broken", "{not json"))

	_, err = NewStore(database).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules: decode rule broken")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryFailure(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, payload")).WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM wage_rules")).WithArgs("x").WillReturnError(boom)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wage_rules")).WillReturnError(boom)

	store := NewStore(database)
	_, err = store.List(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = store.Get(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	err = store.Upsert(context.Background(), pricing.Rule{ID: "x", Function: pricing.FunctionCleaning})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
