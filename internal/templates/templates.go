// Package templates merges saved profiles and task history into one list of
// reusable task templates.
package templates

import model "redmine-planner.com/redmine-planner/pkg/models"

type Kind string

const (
	KindProfile Kind = "profile"
	KindHistory Kind = "history"
)

// Source is a profile or a history entry seen through the same shape.
// Zero ids mean unset.
type Source struct {
	Kind           Kind
	Name           string
	ProjectID      int
	IssueID        int
	ActivityID     int
	Comments       string
	RDFunctionTeam string
	ProjectName    string
	IssueName      string
}

func FromProfile(p model.Profile) Source {
	return Source{
		Kind:           KindProfile,
		Name:           p.Name,
		ProjectID:      p.ProjectID,
		IssueID:        p.IssueID,
		ActivityID:     p.ActivityID,
		Comments:       p.Comments,
		RDFunctionTeam: p.RDFunctionTeam,
		ProjectName:    p.ProjectName,
		IssueName:      p.IssueName,
	}
}

func FromHistory(h model.HistoryEntry) Source {
	return Source{
		Kind:           KindHistory,
		Name:           h.Name,
		ProjectID:      deref(h.ProjectID),
		IssueID:        deref(h.IssueID),
		ActivityID:     deref(h.ActivityID),
		Comments:       h.Comments,
		RDFunctionTeam: h.RDFunctionTeam,
	}
}

// Merge lists profiles in their order, then history entries whose name is not
// taken yet. On a name collision the profile wins; among history entries the
// first one wins.
func Merge(profiles []model.Profile, history []model.HistoryEntry) []Source {
	merged := make([]Source, 0, len(profiles)+len(history))
	seen := make(map[string]struct{}, len(profiles)+len(history))

	for _, p := range profiles {
		seen[p.Name] = struct{}{}
		merged = append(merged, FromProfile(p))
	}
	for _, h := range history {
		if _, dup := seen[h.Name]; dup {
			continue
		}
		seen[h.Name] = struct{}{}
		merged = append(merged, FromHistory(h))
	}
	return merged
}

func Find(sources []Source, name string) (Source, bool) {
	for _, s := range sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

func deref(id *int) int {
	if !model.Present(id) {
		return 0
	}
	return *id
}
