package attendance

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/internal/roster"
	"classtrack/internal/task"
)

func makeTasks(n int) []task.Task {
	out := make([]task.Task, n)
	for i := range out {
		out[i] = task.Task{ID: fmt.Sprintf("t%d", i+1), Title: fmt.Sprintf("Session %d", i+1)}
	}
	return out
}

func TestAggregateCounts(t *testing.T) {
	students := []roster.Student{{ID: "s1", Name: "Asha"}}
	tasks := makeTasks(5)
	now := time.Now()
	ix := BuildIndex([]Record{
		{ID: "r1", StudentID: "s1", TaskID: "t1", Status: StatusPresent, MarkedAt: now},
		{ID: "r2", StudentID: "s1", TaskID: "t3", Status: StatusPresent, MarkedAt: now},
		{ID: "r3", StudentID: "s1", TaskID: "t4", Status: StatusAbsent, MarkedAt: now},
	})

	sums := Aggregate(students, tasks, ix)
	got := sums["s1"]
	assert.Equal(t, 2, got.PresentCount)
	assert.Equal(t, 1, got.AbsentCount)
	assert.Equal(t, 5, got.TotalCount)
	assert.Equal(t, 40, got.Percentage)
}

func TestAggregatePercentageRounding(t *testing.T) {
	cases := []struct {
		present, total, want int
	}{
		{3, 4, 75},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{0, 7, 0},
		{7, 7, 100},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d of %d", tc.present, tc.total), func(t *testing.T) {
			assert.Equal(t, tc.want, percentage(tc.present, tc.total))
		})
	}
}

func TestAggregateNoTasks(t *testing.T) {
	students := []roster.Student{{ID: "s1", Name: "Asha"}}
	sums := Aggregate(students, nil, BuildIndex(nil))

	got := sums["s1"]
	assert.Zero(t, got.TotalCount)
	assert.Zero(t, got.Percentage)
}

func TestAggregateIgnoresRecordsForDeletedTasks(t *testing.T) {
	students := []roster.Student{{ID: "s1", Name: "Asha"}}
	tasks := makeTasks(2)
	ix := BuildIndex([]Record{
		{ID: "r1", StudentID: "s1", TaskID: "t1", Status: StatusPresent, MarkedAt: time.Now()},
		// t9 no longer exists; with cascade disabled its record lingers.
		{ID: "r2", StudentID: "s1", TaskID: "t9", Status: StatusPresent, MarkedAt: time.Now()},
	})

	got := Aggregate(students, tasks, ix)["s1"]
	assert.Equal(t, 1, got.PresentCount)
	assert.Equal(t, 2, got.TotalCount)
	assert.Equal(t, 50, got.Percentage)
}

func TestSummaryListOrdering(t *testing.T) {
	students := []roster.Student{
		{ID: "s3", Name: "bola"},
		{ID: "s1", Name: "Asha"},
		{ID: "s2", Name: "asha"}, // same name as s1 modulo case
	}
	sums := Aggregate(students, makeTasks(1), BuildIndex(nil))

	list := SummaryList(sums)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"s1", "s2", "s3"}, []string{list[0].StudentID, list[1].StudentID, list[2].StudentID})
}

func TestAggregateDeterministic(t *testing.T) {
	students := []roster.Student{{ID: "s1", Name: "Asha"}, {ID: "s2", Name: "Bola"}}
	tasks := makeTasks(3)
	now := time.Now()
	recs := []Record{
		{ID: "r1", StudentID: "s1", TaskID: "t1", Status: StatusPresent, MarkedAt: now},
		{ID: "r2", StudentID: "s2", TaskID: "t2", Status: StatusAbsent, MarkedAt: now},
	}

	first := Aggregate(students, tasks, BuildIndex(recs))
	second := Aggregate(students, tasks, BuildIndex(recs))
	assert.Equal(t, first, second)
}
