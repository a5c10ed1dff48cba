package assembly

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidQuery is returned for empty or whitespace-only search queries.
var ErrInvalidQuery = errors.New("search query is empty")

// Candidate is one student surfaced by a search strategy. Optional fields stay
// nil when the strategy could not resolve them.
type Candidate struct {
	StudentID     string   `json:"student_id"`
	StudentNumber *string  `json:"student_number,omitempty"`
	Name          *string  `json:"name,omitempty"`
	ClassID       *string  `json:"class_id,omitempty"`
	ClassName     *string  `json:"class_name,omitempty"`
	Email         *string  `json:"email,omitempty"`
	MatchedBy     []string `json:"matched_by"`
}

// Strategy produces candidates for a query from one attribute of the store.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, query string) ([]Candidate, error)
}

// NormalizeQuery trims the query and rejects blank input.
func NormalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", ErrInvalidQuery
	}
	return q, nil
}

// Search runs every strategy concurrently, waits for all of them, then merges
// the candidate lists in strategy order. The first strategy error is returned
// unchanged.
func Search(ctx context.Context, query string, strategies ...Strategy) ([]Candidate, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	lists := make([][]Candidate, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, strategy := range strategies {
		g.Go(func() error {
			found, err := strategy.Run(gctx, q)
			if err != nil {
				return err
			}
			for j := range found {
				found[j].MatchedBy = appendUnique(found[j].MatchedBy, strategy.Name)
			}
			lists[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return MergeCandidates(lists...), nil
}

// MergeCandidates unions the lists and deduplicates by student id. The first
// occurrence keeps its values; a later occurrence only fills fields the first
// left nil. Discovery order is preserved.
func MergeCandidates(lists ...[]Candidate) []Candidate {
	merged := make([]Candidate, 0)
	position := make(map[string]int)
	for _, list := range lists {
		for _, c := range list {
			if c.StudentID == "" {
				continue
			}
			idx, seen := position[c.StudentID]
			if !seen {
				c.MatchedBy = appendUnique(nil, c.MatchedBy...)
				position[c.StudentID] = len(merged)
				merged = append(merged, c)
				continue
			}
			existing := &merged[idx]
			fillString(&existing.StudentNumber, c.StudentNumber)
			fillString(&existing.Name, c.Name)
			fillString(&existing.ClassID, c.ClassID)
			fillString(&existing.ClassName, c.ClassName)
			fillString(&existing.Email, c.Email)
			existing.MatchedBy = appendUnique(existing.MatchedBy, c.MatchedBy...)
		}
	}
	return merged
}

func fillString(dst **string, src *string) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
