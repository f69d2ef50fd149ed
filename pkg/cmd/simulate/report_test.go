//nolint:thelper,whitespace,lll,funlen // ok for tests
package simulate

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/turtlerace/pkg/model"
	"github.com/mpapenbr/turtlerace/pkg/race"
	"github.com/mpapenbr/turtlerace/testsupport/basedata"
)

func outcome(colors ...model.Color) *model.RaceOutcome {
	ret := &model.RaceOutcome{RacerCount: len(colors)}
	for i, c := range colors {
		ret.Finishers = append(ret.Finishers, model.Finisher{Color: c, Tick: 10 + i})
	}
	return ret
}

func TestBuildReport(t *testing.T) {
	outcomes := []*model.RaceOutcome{
		outcome("red", "blue", "green"),
		outcome("red", "green", "blue"),
		outcome("green", "red", "blue"),
		outcome("blue", "red", "green"),
	}
	r := buildReport(basedata.SampleOdds(), outcomes, 50)

	assert.Equal(t, 4, r.Races)
	assert.Equal(t, "12.50", r.AvgTicks.StringFixed(2))

	got := make(map[model.Color][3]string)
	for _, c := range r.Colors {
		got[c.Color] = [3]string{
			c.Share.StringFixed(4), c.AvgPos.StringFixed(2), c.Expected.StringFixed(4),
		}
	}
	want := map[model.Color][3]string{
		"red":   {"0.5000", "1.50", "-0.2500"},
		"blue":  {"0.2500", "2.25", "-0.5000"},
		"green": {"0.2500", "2.25", "-0.3750"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report not correct: %s", diff)
	}
	assert.Equal(t, []int{2, 1, 1}, []int{r.Colors[0].Wins, r.Colors[1].Wins, r.Colors[2].Wins})
}

func TestBuildReport_Empty(t *testing.T) {
	r := buildReport(basedata.SampleOdds(), nil, 0)
	assert.Equal(t, 0, r.Races)
	assert.Empty(t, r.Colors)
}

func TestRun(t *testing.T) {
	odds := basedata.SampleOdds()
	a, err := Run(odds, 200, 42, nil, race.WithFinishDistance(50))
	require.NoError(t, err)
	b, err := Run(odds, 200, 42, nil, race.WithFinishDistance(50))
	require.NoError(t, err)

	assert.Equal(t, 200, a.Races)
	wins := 0
	for _, c := range a.Colors {
		wins += c.Wins
	}
	assert.Equal(t, 200, wins)
	if diff := cmp.Diff(a, b, cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})); diff != "" {
		t.Errorf("same seed should produce the same report: %s", diff)
	}
}

func TestRun_InvalidOptions(t *testing.T) {
	_, err := Run(basedata.SampleOdds(), 10, 1, nil, race.WithFinishDistance(0))
	assert.True(t, errors.Is(err, race.ErrInvalidTrack), "got %v", err)
}

func TestRun_InvalidRaces(t *testing.T) {
	tests := []struct {
		name    string
		races   int
		wantErr error
	}{
		{"negative", -1, ErrInvalidRaces},
		{"very negative", -1000000, ErrInvalidRaces},
		{"zero", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Run(basedata.SampleOdds(), tt.races, 1, nil)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, r.Races)
		})
	}
}

func TestWriteReport(t *testing.T) {
	r := buildReport(basedata.SampleOdds(), []*model.RaceOutcome{
		outcome("blue", "red", "green"),
	}, 10)
	out := &bytes.Buffer{}
	require.NoError(t, writeReport(out, r, 7))
	assert.Contains(t, out.String(), "Races: 1 (seed 7), average ticks: 10.00")
	assert.Contains(t, out.String(), "100.00%")
	assert.Contains(t, out.String(), "expected return")
}
