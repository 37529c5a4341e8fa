package postgres_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/stag/internal/config"
	"github.com/cory-johannsen/stag/internal/game/session"
	"github.com/cory-johannsen/stag/internal/storage/postgres"
	"github.com/cory-johannsen/stag/internal/testutil"
)

func TestEntryFromExchange(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok := postgres.EntryFromExchange(session.Exchange{Player: "simon", Command: "look", Response: "You are in", At: at})
	assert.Equal(t, postgres.OutcomeOK, ok.Outcome)
	assert.False(t, ok.Failed())
	assert.Equal(t, at, ok.CreatedAt)

	failed := postgres.EntryFromExchange(session.Exchange{Player: "simon", Command: "dance", Response: "[ERROR]: No action found", Kind: "no_trigger"})
	assert.Equal(t, "no_trigger", failed.Outcome)
	assert.True(t, failed.Failed())
}

func setupJournal(t *testing.T) (*postgres.JournalRepository, *postgres.Pool) {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewJournalRepository(pc.RawPool), pc.Pool
}

func TestJournal_InsertAndRecent(t *testing.T) {
	repo, _ := setupJournal(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour).UTC().Truncate(time.Microsecond)

	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, postgres.Entry{
			Player:    "simon",
			Command:   fmt.Sprintf("look %d", i),
			Response:  "You are in a cabin",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "look 4", recent[0].Command)
	assert.Equal(t, "look 2", recent[2].Command)
	assert.NotEqual(t, uuid.Nil, recent[0].ID)
	assert.Equal(t, postgres.OutcomeOK, recent[0].Outcome)
}

func TestJournal_RecordAndByPlayer(t *testing.T) {
	repo, _ := setupJournal(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, session.Exchange{Player: "Simon", Command: "inv", Response: "The player has", At: time.Now()}))
	require.NoError(t, repo.Record(ctx, session.Exchange{Player: "sion", Command: "dance", Response: "[ERROR]: No action found", Kind: "no_trigger", At: time.Now()}))

	entries, err := repo.ByPlayer(ctx, "SIMON", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Simon", entries[0].Player)

	entries, err = repo.ByPlayer(ctx, "sion", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Failed())
}

func TestJournal_InvalidLimit(t *testing.T) {
	repo, _ := setupJournal(t)
	_, err := repo.Recent(context.Background(), 0)
	assert.ErrorIs(t, err, postgres.ErrInvalidLimit)
}

func TestPool_Check(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	check := pc.Pool.Check(postgres.DefaultCheckTimeout)
	assert.Error(t, check(context.Background()), "journal table is missing before migrating")

	pc.ApplyMigrations(t)
	assert.NoError(t, check(context.Background()))
}

func TestPool_JournalAndMigrator(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	g, err := pc.Pool.Migrator()
	require.NoError(t, err)
	defer g.Close()
	require.NoError(t, g.Up(0))

	require.NoError(t, pc.Pool.Journal().Record(context.Background(), session.Exchange{Player: "simon", Command: "look", Response: "You are in"}))
}

func TestJournal_LongPlayerName(t *testing.T) {
	repo, _ := setupJournal(t)
	ctx := context.Background()
	name := strings.TrimSpace(strings.Repeat("Montgomery ", 40))

	require.NoError(t, repo.Record(ctx, session.Exchange{Player: name, Command: "look", Response: "You are in"}))

	entries, err := repo.ByPlayer(ctx, name, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, name, entries[0].Player)
}

func TestPoolConfig_TagsApplicationName(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "stag", Password: "stag", Name: "stag", SSLMode: "disable",
		MaxConns: 4, MinConns: 1, MaxConnLifetime: time.Minute,
	}
	poolCfg, err := postgres.PoolConfig("north", cfg)
	require.NoError(t, err)
	assert.Equal(t, "stag-journal/north", poolCfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(4), poolCfg.MaxConns)
	assert.Equal(t, int32(1), poolCfg.MinConns)
	assert.Equal(t, time.Minute, poolCfg.MaxConnLifetime)

	unnamed, err := postgres.PoolConfig("", cfg)
	require.NoError(t, err)
	assert.NotContains(t, unnamed.ConnConfig.RuntimeParams, "application_name")
}

func TestMigrator_DownAndUp(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	g, err := postgres.NewMigrator(pc.DSN())
	require.NoError(t, err)
	defer g.Close()

	require.NoError(t, g.Up(0))
	v, dirty, err := g.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)

	require.NoError(t, g.Up(0), "re-applying must be a no-op")
	require.NoError(t, g.Down(0))
	v, _, err = g.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
}
