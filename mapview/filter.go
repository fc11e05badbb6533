// Package mapview holds the admin map's filter state and everything derived
// from it: the competition-scoped team list, the visible records and the
// markers handed to the clustering overlay.
//
// Derived values are pure functions of the full record list and a Selection;
// the View type only stores the records and the selection itself.
package mapview

import "go-photomap/types"

// Selection is the transient filter state of one mounted map. Empty strings
// mean "all".
type Selection struct {
	Competition string `json:"competition"`
	Team        string `json:"team"`
	Compare     bool   `json:"compare"`
	Team1       string `json:"team1"`
	Team2       string `json:"team2"`
}

// TeamsForCompetition returns the distinct team names of records in the
// competition, in first-seen order. No competition means no team list.
func TeamsForCompetition(records []types.LocationRecord, competition string) []string {
	teams := []string{}
	if competition == "" {
		return teams
	}
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Competition != competition || seen[r.Team] {
			continue
		}
		seen[r.Team] = true
		teams = append(teams, r.Team)
	}
	return teams
}

// Competitions returns the distinct competition names in first-seen order.
func Competitions(records []types.LocationRecord) []string {
	competitions := []string{}
	seen := make(map[string]bool)
	for _, r := range records {
		if seen[r.Competition] {
			continue
		}
		seen[r.Competition] = true
		competitions = append(competitions, r.Competition)
	}
	return competitions
}

// FilterByCompetition keeps records of the competition; "" keeps everything.
func FilterByCompetition(records []types.LocationRecord, competition string) []types.LocationRecord {
	if competition == "" {
		return records
	}
	return filter(records, func(r types.LocationRecord) bool {
		return r.Competition == competition
	})
}

// FilterByTeam keeps records of the team; "" keeps everything.
func FilterByTeam(records []types.LocationRecord, team string) []types.LocationRecord {
	if team == "" {
		return records
	}
	return filter(records, func(r types.LocationRecord) bool {
		return r.Team == team
	})
}

// VisibleRecords applies the selection. In compare mode the single team filter
// is ignored and records of team1 or team2 within the competition are kept.
func VisibleRecords(records []types.LocationRecord, sel Selection) []types.LocationRecord {
	scoped := FilterByCompetition(records, sel.Competition)
	if sel.Compare {
		return filter(scoped, func(r types.LocationRecord) bool {
			return r.Team == sel.Team1 || r.Team == sel.Team2
		})
	}
	return FilterByTeam(scoped, sel.Team)
}

func filter(records []types.LocationRecord, keep func(types.LocationRecord) bool) []types.LocationRecord {
	out := make([]types.LocationRecord, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
