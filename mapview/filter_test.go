package mapview

import (
	"fmt"
	"math/rand"
	"testing"

	"go-photomap/types"

	"github.com/stretchr/testify/assert"
)

func record(lat, lon float64, competition, team string) types.LocationRecord {
	return types.LocationRecord{
		Latitude:    types.Float(lat),
		Longitude:   types.Float(lon),
		URL:         fmt.Sprintf("https://img.example.com/%s-%s.jpg", competition, team),
		Title:       fmt.Sprintf("%s/%s@%v", competition, team, lat),
		Description: "photo",
		Competition: competition,
		Team:        team,
	}
}

// scenarioRecords is the A/X, A/Y, B/Z dataset.
func scenarioRecords() []types.LocationRecord {
	return []types.LocationRecord{
		record(1, 1, "A", "X"),
		record(2, 2, "A", "Y"),
		record(3, 3, "B", "Z"),
	}
}

func TestTeamsForCompetition(t *testing.T) {
	records := []types.LocationRecord{
		record(1, 1, "A", "Y"),
		record(2, 2, "A", "X"),
		record(3, 3, "B", "Z"),
		record(4, 4, "A", "Y"),
		record(5, 5, "A", "X"),
		record(6, 6, "B", "X"),
	}

	tests := []struct {
		name        string
		competition string
		want        []string
	}{
		{"first-seen order without duplicates", "A", []string{"Y", "X"}},
		{"other competition", "B", []string{"Z", "X"}},
		{"unknown competition", "C", []string{}},
		{"no competition selected", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TeamsForCompetition(records, tt.competition))
		})
	}
}

func TestTeamsForCompetitionProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	competitions := []string{"A", "B", "C"}
	teams := []string{"X", "Y", "Z", "W"}

	for run := 0; run < 50; run++ {
		var records []types.LocationRecord
		n := rng.Intn(30)
		for i := 0; i < n; i++ {
			records = append(records, record(float64(i), float64(i),
				competitions[rng.Intn(len(competitions))], teams[rng.Intn(len(teams))]))
		}

		for _, competition := range competitions {
			got := TeamsForCompetition(records, competition)

			var want []string
			seen := map[string]bool{}
			for _, r := range records {
				if r.Competition == competition && !seen[r.Team] {
					seen[r.Team] = true
					want = append(want, r.Team)
				}
			}
			if want == nil {
				want = []string{}
			}
			assert.Equal(t, want, got, "run %d competition %s", run, competition)
		}
	}
}

func TestCompetitions(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Competitions(scenarioRecords()))
	assert.Equal(t, []string{}, Competitions(nil))
}

func TestVisibleRecords(t *testing.T) {
	records := scenarioRecords()

	tests := []struct {
		name string
		sel  Selection
		want []types.LocationRecord
	}{
		{
			name: "no filters yields everything",
			sel:  Selection{},
			want: records,
		},
		{
			name: "competition filter",
			sel:  Selection{Competition: "A"},
			want: records[:2],
		},
		{
			name: "competition and team filter",
			sel:  Selection{Competition: "A", Team: "X"},
			want: records[:1],
		},
		{
			name: "team filter without competition",
			sel:  Selection{Team: "Z"},
			want: records[2:],
		},
		{
			name: "compare mode ignores single team selection",
			sel:  Selection{Competition: "A", Team: "X", Compare: true, Team1: "X", Team2: "Y"},
			want: records[:2],
		},
		{
			name: "compare mode stays within the competition",
			sel:  Selection{Competition: "A", Compare: true, Team1: "X", Team2: "Z"},
			want: records[:1],
		},
		{
			name: "compare mode with the same team twice",
			sel:  Selection{Competition: "A", Compare: true, Team1: "Y", Team2: "Y"},
			want: records[1:2],
		},
		{
			name: "compare mode with empty slots",
			sel:  Selection{Competition: "A", Compare: true},
			want: []types.LocationRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisibleRecords(records, tt.sel))
		})
	}
}

func TestFilterByTeamAndCompetitionCommute(t *testing.T) {
	records := scenarioRecords()
	records = append(records, record(4, 4, "B", "X"))

	for _, competition := range []string{"", "A", "B"} {
		for _, team := range []string{"", "X", "Y", "Z"} {
			a := FilterByTeam(FilterByCompetition(records, competition), team)
			b := FilterByCompetition(FilterByTeam(records, team), competition)
			assert.Equal(t, a, b, "competition=%q team=%q", competition, team)
			assert.Equal(t, a, VisibleRecords(records, Selection{Competition: competition, Team: team}))
		}
	}
}
