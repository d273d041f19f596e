package attendance

// pairKey identifies a (student, task) pair.
type pairKey struct {
	studentID string
	taskID    string
}

// Index is a derived, disposable lookup view over a snapshot of
// attendance records. It is never a source of truth: duplicates stay in
// raw storage, the index just excludes them from reads.
type Index struct {
	byPair map[pairKey]Record
}

// BuildIndex resolves a flat record list into one authoritative record
// per (student, task) pair. When duplicates exist the record with the
// latest marked/created instant wins; ties break toward the
// lexicographically highest id so rebuilds are deterministic. The input
// slice is not mutated.
func BuildIndex(records []Record) *Index {
	ix := &Index{byPair: make(map[pairKey]Record, len(records))}
	for _, rec := range records {
		key := pairKey{studentID: rec.StudentID, taskID: rec.TaskID}
		cur, ok := ix.byPair[key]
		if !ok || supersedes(rec, cur) {
			ix.byPair[key] = rec
		}
	}
	return ix
}

// supersedes reports whether candidate wins over current under the
// last-writer-wins rule.
func supersedes(candidate, current Record) bool {
	ct, xt := candidate.effectiveTime(), current.effectiveTime()
	if ct.After(xt) {
		return true
	}
	if ct.Before(xt) {
		return false
	}
	return candidate.ID > current.ID
}

// Lookup returns the authoritative record for the pair, if any.
func (ix *Index) Lookup(studentID, taskID string) (Record, bool) {
	rec, ok := ix.byPair[pairKey{studentID: studentID, taskID: taskID}]
	return rec, ok
}

// Len returns the number of distinct (student, task) pairs.
func (ix *Index) Len() int {
	return len(ix.byPair)
}
