package assembly

import (
	"errors"
	"sort"

	"golang.org/x/text/cases"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

var (
	// ErrEmptyRoster is returned when a roll number is requested from a roster with no members.
	ErrEmptyRoster = errors.New("active roster is empty")
	// ErrNotOnRoster is returned when the student is not part of the active roster.
	ErrNotOnRoster = errors.New("student not on active roster")
)

// RosterEntry is one member of an active class roster.
type RosterEntry struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

// RankedEntry is a roster member with its roll number.
type RankedEntry struct {
	RosterEntry
	RollNumber int `json:"roll_number"`
}

// ActiveRoster selects the active students of a class. Students without a
// profile take the empty name and therefore sort first.
func ActiveRoster(classID string, students []StudentView) []RosterEntry {
	entries := make([]RosterEntry, 0, len(students))
	for _, v := range students {
		if v.Student.Status != models.StudentStatusActive {
			continue
		}
		if v.Student.ClassID == nil || *v.Student.ClassID != classID {
			continue
		}
		entries = append(entries, RosterEntry{StudentID: v.Student.ID, Name: v.Name()})
	}
	return entries
}

// OrderRoster returns the canonical roll-number ordering. Names compare
// case-insensitively first, then by their exact bytes; remaining ties keep
// input order. The input slice is never modified.
func OrderRoster(entries []RosterEntry) []RankedEntry {
	fold := cases.Fold()
	type keyed struct {
		entry  RosterEntry
		folded string
	}
	items := make([]keyed, len(entries))
	for i, e := range entries {
		items[i] = keyed{entry: e, folded: fold.String(e.Name)}
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].folded != items[b].folded {
			return items[a].folded < items[b].folded
		}
		return items[a].entry.Name < items[b].entry.Name
	})
	ranked := make([]RankedEntry, len(items))
	for i, it := range items {
		ranked[i] = RankedEntry{RosterEntry: it.entry, RollNumber: i + 1}
	}
	return ranked
}

// RollNumberOf returns the 1-based position of studentID in the ordered roster.
func RollNumberOf(entries []RosterEntry, studentID string) (int, error) {
	if len(entries) == 0 {
		return 0, ErrEmptyRoster
	}
	for _, r := range OrderRoster(entries) {
		if r.StudentID == studentID {
			return r.RollNumber, nil
		}
	}
	return 0, ErrNotOnRoster
}

// RollNumbers maps every roster member to its roll number.
func RollNumbers(ordered []RankedEntry) map[string]int {
	numbers := make(map[string]int, len(ordered))
	for _, r := range ordered {
		numbers[r.StudentID] = r.RollNumber
	}
	return numbers
}
