package attendance

import (
	"sort"
	"strings"

	"classtrack/internal/roster"
	"classtrack/internal/task"
)

// Summary holds per-student attendance counts derived from the task
// list and the index. It is recomputed on every read, never persisted.
type Summary struct {
	StudentID    string `json:"student_id"`
	Name         string `json:"name"`
	PresentCount int    `json:"present_count"`
	AbsentCount  int    `json:"absent_count"`
	TotalCount   int    `json:"total_count"`
	Percentage   int    `json:"percentage"`
}

// Aggregate computes one Summary per student. TotalCount is the number
// of tasks in scope regardless of window state, matching the admin
// view's "out of how many sessions" framing. Records for deleted tasks
// are excluded because only live tasks are counted.
func Aggregate(students []roster.Student, tasks []task.Task, ix *Index) map[string]Summary {
	out := make(map[string]Summary, len(students))
	for _, st := range students {
		sum := Summary{
			StudentID:  st.ID,
			Name:       st.Name,
			TotalCount: len(tasks),
		}
		for _, t := range tasks {
			rec, ok := ix.Lookup(st.ID, t.ID)
			if !ok {
				continue
			}
			switch rec.Status {
			case StatusPresent:
				sum.PresentCount++
			case StatusAbsent:
				sum.AbsentCount++
			}
		}
		sum.Percentage = percentage(sum.PresentCount, sum.TotalCount)
		out[st.ID] = sum
	}
	return out
}

// percentage is integer round-half-up of 100*present/total, 0 when
// there are no tasks.
func percentage(present, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*present + total) / (2 * total)
}

// SummaryList materializes summaries in stable UI order: display name
// case-insensitively, ties broken by student id.
func SummaryList(summaries map[string]Summary) []Summary {
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}
