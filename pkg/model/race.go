package model

import "slices"

type RaceState int

const (
	RaceNotStarted RaceState = iota
	RaceRunning
	RaceFinished
)

func (s RaceState) String() string {
	switch s {
	case RaceNotStarted:
		return "not started"
	case RaceRunning:
		return "running"
	case RaceFinished:
		return "finished"
	default:
		return "unknown"
	}
}

type Finisher struct {
	Color Color
	Tick  int // tick in which the finish line was crossed
}

// RaceOutcome holds the order in which the racers crossed the finish line.
// The outcome is complete when every racer has finished.
type RaceOutcome struct {
	Finishers  []Finisher
	RacerCount int
}

func (o *RaceOutcome) Complete() bool {
	return o != nil && o.RacerCount > 0 && len(o.Finishers) == o.RacerCount
}

// RankOf returns the 1-based finishing rank of c
func (o *RaceOutcome) RankOf(c Color) (int, bool) {
	if o == nil {
		return 0, false
	}
	idx := slices.IndexFunc(o.Finishers, func(f Finisher) bool { return f.Color == c })
	if idx == -1 {
		return 0, false
	}
	return idx + 1, true
}

// Occupies reports whether c finished at the given rank
func (o *RaceOutcome) Occupies(c Color, rank int) bool {
	got, ok := o.RankOf(c)
	return ok && got == rank
}

// Winner returns the first finisher
func (o *RaceOutcome) Winner() (Color, bool) {
	if o == nil || len(o.Finishers) == 0 {
		return "", false
	}
	return o.Finishers[0].Color, true
}

func (o *RaceOutcome) Order() []Color {
	ret := make([]Color, len(o.Finishers))
	for i, f := range o.Finishers {
		ret[i] = f.Color
	}
	return ret
}

func (o *RaceOutcome) Clone() *RaceOutcome {
	if o == nil {
		return nil
	}
	return &RaceOutcome{
		Finishers:  slices.Clone(o.Finishers),
		RacerCount: o.RacerCount,
	}
}

type RacerState struct {
	Color      Color
	Position   int
	Finished   bool
	FinishTick int // 0 while still racing
}

// Snapshot is the state of all racers after a tick.
// Racers are kept in iteration order.
type Snapshot struct {
	Tick           int
	FinishDistance int
	Racers         []RacerState
	State          RaceState
}

// Rank returns the current 1-based rank of c by position.
// Racers with equal positions are ranked by iteration order.
// Returns 0 if c is not part of the race.
func (s *Snapshot) Rank(c Color) int {
	idx := slices.IndexFunc(s.Racers, func(r RacerState) bool { return r.Color == c })
	if idx == -1 {
		return 0
	}
	pos := s.Racers[idx].Position
	rank := 1
	for i, r := range s.Racers {
		if r.Position > pos || (r.Position == pos && i < idx) {
			rank++
		}
	}
	return rank
}

// Standings returns the colors ordered by current rank
func (s *Snapshot) Standings() []Color {
	racers := slices.Clone(s.Racers)
	// stable sort keeps iteration order for equal positions
	slices.SortStableFunc(racers, func(a, b RacerState) int {
		return b.Position - a.Position
	})
	ret := make([]Color, len(racers))
	for i, r := range racers {
		ret[i] = r.Color
	}
	return ret
}

func (s *Snapshot) Leader() Color {
	if len(s.Racers) == 0 {
		return ""
	}
	return s.Standings()[0]
}

func (s *Snapshot) Racer(c Color) (RacerState, bool) {
	idx := slices.IndexFunc(s.Racers, func(r RacerState) bool { return r.Color == c })
	if idx == -1 {
		return RacerState{}, false
	}
	return s.Racers[idx], true
}
