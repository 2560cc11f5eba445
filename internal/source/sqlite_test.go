package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/entitydeck/internal/engine/batch"
)

func openSeeded(t *testing.T, count, pageSize int) *SQLSource {
	t.Helper()
	src, err := OpenSQLite(filepath.Join(t.TempDir(), "entities.db"), pageSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	require.NoError(t, src.Seed(context.Background(), count, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	return src
}

func TestSQLSource_Pages(t *testing.T) {
	src := openSeeded(t, 45, 20)
	ctx := context.Background()

	first, err := src.FetchPage(ctx, Cursor{})
	require.NoError(t, err)
	require.NoError(t, first.Validate())
	require.Len(t, first.Items, 20)
	assert.True(t, first.HasMore)
	assert.Equal(t, "entity-1", first.Items[0].ID)
	assert.NotEqual(t, "20", first.Next.Token())

	second, err := src.FetchPage(ctx, first.Next)
	require.NoError(t, err)
	require.Len(t, second.Items, 20)
	assert.Equal(t, "entity-21", second.Items[0].ID)

	last, err := src.FetchPage(ctx, second.Next)
	require.NoError(t, err)
	require.Len(t, last.Items, 5)
	assert.False(t, last.HasMore)
	assert.True(t, last.Next.IsZero())
	assert.Equal(t, "entity-45", last.Items[4].ID)
}

func TestSQLSource_ExactMultiple(t *testing.T) {
	src := openSeeded(t, 40, 20)
	ctx := context.Background()

	first, err := src.FetchPage(ctx, Cursor{})
	require.NoError(t, err)
	second, err := src.FetchPage(ctx, first.Next)
	require.NoError(t, err)
	assert.Len(t, second.Items, 20)
	assert.False(t, second.HasMore)
}

func TestSQLSource_BadCursor(t *testing.T) {
	src := openSeeded(t, 5, 20)

	for _, token := range []string{"!!!", "c2VxOg", "Zm9vOjE"} {
		_, err := src.FetchPage(context.Background(), MakeCursor(token))
		var de *DecodeError
		assert.ErrorAs(t, err, &de, token)
	}
}

func TestSQLSource_FetchDetail(t *testing.T) {
	src := openSeeded(t, 5, 20)
	ctx := context.Background()

	rec, err := src.FetchDetail(ctx, "entity-4")
	require.NoError(t, err)
	assert.Equal(t, "Entity 4", rec.Name)
	require.NotNil(t, rec.Metadata)
	assert.Equal(t, 40, rec.Metadata.Views)

	_, err = src.FetchDetail(ctx, "entity-99")
	assert.True(t, IsNotFound(err))

	_, err = src.DB().Exec(`INSERT INTO entities (seq, id, name, detail) VALUES (100, 'broken', 'Broken', '{not json')`)
	require.NoError(t, err)
	_, err = src.FetchDetail(ctx, "broken")
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestSQLSource_SeedRejectsEmpty(t *testing.T) {
	src, err := OpenSQLite(filepath.Join(t.TempDir(), "e.db"), 10)
	require.NoError(t, err)
	defer src.Close()
	assert.Error(t, src.Seed(context.Background(), 0, time.Now()))
}

func TestSQLSource_SeedWithProgress(t *testing.T) {
	src, err := OpenSQLite(filepath.Join(t.TempDir(), "e.db"), 10)
	require.NoError(t, err)
	defer src.Close()

	var reports []batch.Progress
	err = src.SeedWithProgress(context.Background(), SeedBatchSize*2+7, time.Now(), func(p batch.Progress) {
		reports = append(reports, p)
	})
	require.NoError(t, err)

	require.Len(t, reports, 3)
	assert.Equal(t, SeedBatchSize, reports[0].DoneItems)
	assert.True(t, reports[2].Complete())

	var rows int
	require.NoError(t, src.DB().QueryRow(`SELECT COUNT(*) FROM entities`).Scan(&rows))
	assert.Equal(t, SeedBatchSize*2+7, rows)
}

func TestSQLSource_SeedCanceledRollsBack(t *testing.T) {
	src := openSeeded(t, 5, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, src.Seed(ctx, 50, time.Now()), context.Canceled)

	var rows int
	require.NoError(t, src.DB().QueryRow(`SELECT COUNT(*) FROM entities`).Scan(&rows))
	assert.Equal(t, 5, rows, "previous rows survive a canceled seed")
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("", 10)
	assert.Error(t, err)
}
