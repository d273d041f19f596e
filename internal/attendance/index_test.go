package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndexEmpty(t *testing.T) {
	ix := BuildIndex(nil)
	_, ok := ix.Lookup("s1", "t1")
	assert.False(t, ok)
	assert.Zero(t, ix.Len())
}

func TestBuildIndexSingleRecord(t *testing.T) {
	rec := Record{ID: "r1", StudentID: "s1", TaskID: "t1", Status: StatusPresent, MarkedAt: time.Now()}
	ix := BuildIndex([]Record{rec})

	got, ok := ix.Lookup("s1", "t1")
	require.True(t, ok)
	assert.Equal(t, rec, got)

	_, ok = ix.Lookup("s1", "t2")
	assert.False(t, ok)
}

func TestBuildIndexLastWriterWins(t *testing.T) {
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	older := Record{ID: "r1", StudentID: "s1", TaskID: "t1", Status: StatusAbsent, MarkedAt: base}
	newer := Record{ID: "r2", StudentID: "s1", TaskID: "t1", Status: StatusPresent, MarkedAt: base.Add(time.Minute)}

	t.Run("latest marked_at wins regardless of input order", func(t *testing.T) {
		for _, recs := range [][]Record{{older, newer}, {newer, older}} {
			got, ok := BuildIndex(recs).Lookup("s1", "t1")
			require.True(t, ok)
			assert.Equal(t, "r2", got.ID)
			assert.Equal(t, StatusPresent, got.Status)
		}
	})

	t.Run("equal instants break toward highest id", func(t *testing.T) {
		a := Record{ID: "ra", StudentID: "s1", TaskID: "t1", MarkedAt: base}
		b := Record{ID: "rb", StudentID: "s1", TaskID: "t1", MarkedAt: base}
		for _, recs := range [][]Record{{a, b}, {b, a}} {
			got, ok := BuildIndex(recs).Lookup("s1", "t1")
			require.True(t, ok)
			assert.Equal(t, "rb", got.ID)
		}
	})
}

func TestBuildIndexFallsBackToCreatedAt(t *testing.T) {
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	// Legacy record with no marked_at; its created_at is newer.
	legacy := Record{ID: "r1", StudentID: "s1", TaskID: "t1", CreatedAt: base.Add(time.Hour)}
	marked := Record{ID: "r2", StudentID: "s1", TaskID: "t1", MarkedAt: base}

	got, ok := BuildIndex([]Record{marked, legacy}).Lookup("s1", "t1")
	require.True(t, ok)
	assert.Equal(t, "r1", got.ID)
}

func TestBuildIndexKeepsPairsSeparate(t *testing.T) {
	now := time.Now()
	recs := []Record{
		{ID: "r1", StudentID: "s1", TaskID: "t1", Status: StatusPresent, MarkedAt: now},
		{ID: "r2", StudentID: "s1", TaskID: "t2", Status: StatusAbsent, MarkedAt: now},
		{ID: "r3", StudentID: "s2", TaskID: "t1", Status: StatusPresent, MarkedAt: now},
	}
	ix := BuildIndex(recs)
	assert.Equal(t, 3, ix.Len())

	got, ok := ix.Lookup("s1", "t2")
	require.True(t, ok)
	assert.Equal(t, StatusAbsent, got.Status)
}

func TestBuildIndexDoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	recs := []Record{
		{ID: "r1", StudentID: "s1", TaskID: "t1", MarkedAt: base},
		{ID: "r2", StudentID: "s1", TaskID: "t1", MarkedAt: base.Add(time.Minute)},
	}
	snapshot := make([]Record, len(recs))
	copy(snapshot, recs)

	BuildIndex(recs)
	assert.Equal(t, snapshot, recs)
}
