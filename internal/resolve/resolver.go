// Package resolve matches a spoken search key against a candidate catalog
// and decides whether the match is unique, ambiguous, or absent.
package resolve

import (
	"sort"
	"strings"

	"voz/internal/domain"
	"voz/internal/nlu"
)

type Status int

const (
	// Resolved: exactly one candidate matched.
	Resolved Status = iota
	// AwaitSelection: several candidates matched; the caller must run the
	// numbered selection sub-dialogue over Candidates.
	AwaitSelection
	// NotFound: no candidate matched at all.
	NotFound
)

// Resolution is the outcome of matching one search key.
type Resolution struct {
	Status     Status
	Candidate  domain.Candidate   // set when Status == Resolved
	Candidates []domain.Candidate // set when Status == AwaitSelection, sorted by label
	Exact      bool               // the ambiguous set consists of exact matches
}

// Resolve compares the normalized search key against every normalized
// candidate label. Exact matches take precedence over partial (substring)
// matches and the two sets are never mixed. An ambiguous set is returned
// sorted by label; that order is frozen as the spoken numbering 1..N.
func Resolve(searchKey string, catalog []domain.Candidate) Resolution {
	key := nlu.Normalize(searchKey)

	var exact, partial []domain.Candidate
	for _, c := range catalog {
		label := nlu.Normalize(c.Label)
		switch {
		case label == key:
			exact = append(exact, c)
		case strings.Contains(label, key):
			partial = append(partial, c)
		}
	}

	pick := exact
	if len(exact) == 0 {
		pick = partial
	}

	switch len(pick) {
	case 0:
		return Resolution{Status: NotFound}
	case 1:
		return Resolution{Status: Resolved, Candidate: pick[0]}
	default:
		sorted := make([]domain.Candidate, len(pick))
		copy(sorted, pick)
		sort.SliceStable(sorted, func(i, j int) bool {
			return nlu.Normalize(sorted[i].Label) < nlu.Normalize(sorted[j].Label)
		})
		return Resolution{Status: AwaitSelection, Candidates: sorted, Exact: len(exact) > 1}
	}
}
