package rank

// Move records a name whose position changed between two rankings
type Move struct {
	Name string `json:"name"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// DiffResult contains the results of comparing two rankings of one year
type DiffResult struct {
	New     []Entry `json:"new,omitempty"`
	Dropped []Entry `json:"dropped,omitempty"`
	Moved   []Move  `json:"moved,omitempty"`
}

// Empty reports whether the two compared rankings were identical in content
func (d *DiffResult) Empty() bool {
	return d == nil || (len(d.New) == 0 && len(d.Dropped) == 0 && len(d.Moved) == 0)
}

// Diff compares the current ranking against a previous one.
// Names are matched exactly; a renamed entry appears as one dropped and one
// new entry at the same position.
func Diff(previous, current []Entry) *DiffResult {
	result := &DiffResult{}

	before := make(map[string]Entry, len(previous))
	for _, e := range previous {
		if _, exists := before[e.Name]; !exists {
			before[e.Name] = e
		}
	}

	seen := make(map[string]bool, len(current))
	for _, e := range current {
		seen[e.Name] = true

		old, exists := before[e.Name]
		if !exists {
			result.New = append(result.New, e)
			continue
		}
		if old.Position != e.Position {
			result.Moved = append(result.Moved, Move{Name: e.Name, From: old.Position, To: e.Position})
		}
	}

	for _, e := range previous {
		if !seen[e.Name] {
			result.Dropped = append(result.Dropped, e)
		}
	}

	return result
}
