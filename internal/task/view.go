package task

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Completion narrows a view by the completed flag.
type Completion string

const (
	CompletionAll       Completion = "all"
	CompletionActive    Completion = "active"
	CompletionCompleted Completion = "completed"
)

// SortMode orders a view.
type SortMode string

const (
	// SortDefault keeps list order, which is newest-first for added tasks.
	SortDefault      SortMode = "default"
	SortPriority     SortMode = "priority"
	SortAlphabetical SortMode = "alphabetical"
)

// Query selects which tasks a view shows. The zero value passes everything:
// an empty completion filter, the catch-all category and an empty tag
// selection each place no restriction. Filters compose by intersection.
type Query struct {
	Completion Completion
	Category   string
	Tags       []string
}

func (q Query) matches(it Item) bool {
	switch q.Completion {
	case CompletionActive:
		if it.Completed {
			return false
		}
	case CompletionCompleted:
		if !it.Completed {
			return false
		}
	}

	if q.Category != "" && q.Category != CategoryAll && it.Category != q.Category {
		return false
	}

	if len(q.Tags) > 0 && !anyTag(it.Tags, q.Tags) {
		return false
	}
	return true
}

// anyTag reports whether the task's tag set intersects the selection.
// OR semantics: one shared tag is enough.
func anyTag(have []string, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Project derives the displayed sequence from the canonical list. It is a
// pure read-model: same inputs, same output, and the input list is never
// mutated. Both sorts are stable, so equal elements keep their filtered
// order.
func Project(items []Item, q Query, mode SortMode) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if q.matches(it) {
			out = append(out, it)
		}
	}

	switch mode {
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.rank() < out[j].Priority.rank()
		})
	case SortAlphabetical:
		// collate.Collator is not safe for concurrent use; build per call.
		c := collate.New(language.Und)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Text, out[j].Text) < 0
		})
	}
	return out
}
