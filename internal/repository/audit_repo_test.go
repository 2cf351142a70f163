package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/regdocgpt/regdocgpt-api/internal/models"
)

func TestAuditRepositoryAppendDefaultsTimestamp(t *testing.T) {
	db := setupTestDB(t, &models.AuditEntry{})
	repo := NewAuditRepository(db)

	before := time.Now().UTC().Add(-time.Second)
	entry := models.AuditEntry{Actor: "system", ActorRole: models.ActorRoleSystem, Event: "bootstrap"}
	require.NoError(t, repo.Append(context.Background(), &entry))
	require.NotZero(t, entry.ID)
	require.True(t, entry.Timestamp.After(before))

	explicit := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pinned := models.AuditEntry{Actor: "system", Event: "backfill", Timestamp: explicit}
	require.NoError(t, repo.Append(context.Background(), &pinned))
	require.Equal(t, explicit, pinned.Timestamp)
}

func TestAuditRepositoryListOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t, &models.AuditEntry{})
	repo := NewAuditRepository(db)

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	older := models.AuditEntry{Actor: "alice", Event: "user.login", Timestamp: base}
	newer := models.AuditEntry{Actor: "alice", Event: "user.login", Timestamp: base.Add(time.Minute)}
	require.NoError(t, repo.Append(context.Background(), &older))
	require.NoError(t, repo.Append(context.Background(), &newer))

	// Same timestamp as the first entry; the higher id must win the tie.
	tied := models.AuditEntry{Actor: "alice", Event: "user.login", Timestamp: base}
	require.NoError(t, repo.Append(context.Background(), &tied))

	entries, err := repo.List(context.Background(), AuditFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, newer.ID, entries[0].ID)
	require.Equal(t, tied.ID, entries[1].ID)
	require.Equal(t, older.ID, entries[2].ID)
}

func TestAuditRepositoryListClampsLimitAndOffset(t *testing.T) {
	db := setupTestDB(t, &models.AuditEntry{})
	repo := NewAuditRepository(db)

	for i := 0; i < 60; i++ {
		entry := models.AuditEntry{Actor: "system", Event: fmt.Sprintf("tick.%d", i)}
		require.NoError(t, repo.Append(context.Background(), &entry))
	}

	entries, err := repo.List(context.Background(), AuditFilter{Limit: 0})
	require.NoError(t, err)
	require.Len(t, entries, FallbackAuditLimit)

	entries, err = repo.List(context.Background(), AuditFilter{Limit: -5, Offset: -1})
	require.NoError(t, err)
	require.Len(t, entries, FallbackAuditLimit)

	page, err := repo.List(context.Background(), AuditFilter{Limit: 25, Offset: 25})
	require.NoError(t, err)
	require.Len(t, page, 25)
}

func TestAuditRepositoryListPaginatesWithoutGaps(t *testing.T) {
	db := setupTestDB(t, &models.AuditEntry{})
	repo := NewAuditRepository(db)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		entry := models.AuditEntry{Actor: "system", Event: "rotate", Timestamp: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, repo.Append(context.Background(), &entry))
	}

	seen := map[int64]bool{}
	for offset := 0; offset < 10; offset += 4 {
		page, err := repo.List(context.Background(), AuditFilter{Limit: 4, Offset: offset})
		require.NoError(t, err)
		for _, entry := range page {
			require.False(t, seen[entry.ID], "entry %d returned twice", entry.ID)
			seen[entry.ID] = true
		}
	}
	require.Len(t, seen, 10)
}

func TestAuditRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t, &models.AuditEntry{})
	repo := NewAuditRepository(db)

	adminID := uint(7)
	userID := uint(42)
	fixtures := []models.AuditEntry{
		{Actor: "alice", ActorRole: models.ActorRoleUser, UserID: &userID, Event: "user.login", Detail: "login ok (status 0)"},
		{Actor: "alice", ActorRole: models.ActorRoleUser, UserID: &userID, Event: "user.login", Detail: "login rejected (status -3): bad credentials"},
		{Actor: "regadmin", ActorRole: models.ActorRoleAdmin, AdminID: &adminID, Event: "admin.login", Detail: "login ok (status 0)"},
		{Actor: "assistant", ActorRole: models.ActorRoleAssistant, Event: "doc.summarize", Detail: "summarized Annex IV"},
	}
	for i := range fixtures {
		require.NoError(t, repo.Append(context.Background(), &fixtures[i]))
	}

	byActor, err := repo.List(context.Background(), AuditFilter{Actor: "alice", Limit: 10})
	require.NoError(t, err)
	require.Len(t, byActor, 2)

	byRole, err := repo.List(context.Background(), AuditFilter{ActorRole: models.ActorRoleAdmin, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byRole, 1)
	require.Equal(t, "regadmin", byRole[0].Actor)

	byAdmin, err := repo.List(context.Background(), AuditFilter{AdminID: &adminID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byAdmin, 1)

	byUser, err := repo.List(context.Background(), AuditFilter{UserID: &userID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byUser, 2)

	byEvent, err := repo.List(context.Background(), AuditFilter{Event: "doc.summarize", Limit: 10})
	require.NoError(t, err)
	require.Len(t, byEvent, 1)
}

func TestAuditRepositoryListSearch(t *testing.T) {
	db := setupTestDB(t, &models.AuditEntry{})
	repo := NewAuditRepository(db)

	userID := uint(42)
	fixtures := []models.AuditEntry{
		{Actor: "alice", Event: "user.login", Detail: "login rejected (status -3): bad credentials"},
		{Actor: "alice", Event: "user.login", Detail: "login ok (status 0)"},
		{Actor: "regadmin", Event: "admin.login", Detail: "login ok (status 0)"},
	}
	for i := range fixtures {
		require.NoError(t, repo.Append(context.Background(), &fixtures[i]))
	}

	// Search is a case-insensitive substring over actor, event and detail.
	hits, err := repo.List(context.Background(), AuditFilter{Search: "REJECTED", Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = repo.List(context.Background(), AuditFilter{Search: "Regadmin", Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// Search combines with the other filters rather than replacing them.
	hits, err = repo.List(context.Background(), AuditFilter{Actor: "alice", Search: "login ok", Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	none, err := repo.List(context.Background(), AuditFilter{UserID: &userID, Search: "login", Limit: 10})
	require.NoError(t, err)
	require.Empty(t, none)
}
