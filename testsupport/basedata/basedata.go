package basedata

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/turtlerace/pkg/model"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-04-28T11:10:12Z")
	return t
}

// SampleOdds is a small table with three racers
func SampleOdds() *model.OddsTable {
	ret, err := model.NewOddsTable([]model.OddsEntry{
		{Color: "red", Multiplier: decimal.RequireFromString("1.5")},
		{Color: "blue", Multiplier: decimal.RequireFromString("2.0")},
		{Color: "green", Multiplier: decimal.RequireFromString("2.5")},
	})
	if err != nil {
		panic(err)
	}
	return ret
}

// StepScript replays predefined steps. It implements race.StepSource.
// Once the script is exhausted it starts over.
type StepScript struct {
	minStep int
	steps   []int
	idx     int
}

// NewStepScript creates a script for the given step range minimum.
// The steps are the values the racers should advance by.
func NewStepScript(minStep int, steps ...int) *StepScript {
	return &StepScript{minStep: minStep, steps: steps}
}

func (s *StepScript) IntN(n int) int {
	v := s.steps[s.idx%len(s.steps)] - s.minStep
	s.idx++
	if v < 0 || v >= n {
		panic("scripted step out of range")
	}
	return v
}

// Used returns the number of steps consumed so far
func (s *StepScript) Used() int {
	return s.idx
}
