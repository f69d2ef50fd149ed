package race

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/model"
)

const (
	DefaultFinishDistance = 700 // track from x=-350 to x=350
	DefaultMinStep        = 1
	DefaultMaxStep        = 10
)

var (
	ErrInvalidTrack     = errors.New("invalid track")
	ErrInvalidStepRange = errors.New("invalid step range")
	ErrNoRacers         = errors.New("no racers")
)

// StepSource provides the random numbers for the racer steps.
// *rand.Rand from math/rand/v2 satisfies this interface.
type StepSource interface {
	// IntN returns a value in [0,n)
	IntN(n int) int
}

type (
	Observer func(s *model.Snapshot)
	Option   func(s *Simulator)
)

type racer struct {
	color      model.Color
	position   int
	finishTick int
}

// Simulator runs a single race. A race is run once, create a new Simulator
// for the next race. Not safe for concurrent use.
type Simulator struct {
	racers         []*racer
	finishDistance int
	minStep        int
	maxStep        int
	src            StepSource
	observer       Observer
	tick           int
	state          model.RaceState
	finishers      []model.Finisher
	l              *log.Logger
}

func WithFinishDistance(d int) Option {
	return func(s *Simulator) {
		s.finishDistance = d
	}
}

func WithStepRange(minStep, maxStep int) Option {
	return func(s *Simulator) {
		s.minStep = minStep
		s.maxStep = maxStep
	}
}

// WithSeed makes the race reproducible
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		//nolint:gosec // not used for security
		s.src = rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
	}
}

func WithStepSource(src StepSource) Option {
	return func(s *Simulator) {
		s.src = src
	}
}

// WithObserver registers a function which is called after each tick
func WithObserver(o Observer) Option {
	return func(s *Simulator) {
		s.observer = o
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) {
		s.l = l
	}
}

// NewSimulator creates a race with one racer per color of the odds table.
// The odds table order defines the iteration order within a tick.
func NewSimulator(odds *model.OddsTable, opts ...Option) (*Simulator, error) {
	if odds == nil || odds.Len() == 0 {
		return nil, ErrNoRacers
	}
	ret := &Simulator{
		finishDistance: DefaultFinishDistance,
		minStep:        DefaultMinStep,
		maxStep:        DefaultMaxStep,
		state:          model.RaceNotStarted,
		l:              log.Default().Named("race"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.finishDistance <= 0 {
		return nil, fmt.Errorf("%w: finish distance must be > 0, got %d",
			ErrInvalidTrack, ret.finishDistance)
	}
	if ret.minStep < 1 || ret.maxStep < ret.minStep {
		return nil, fmt.Errorf("%w: [%d,%d]", ErrInvalidStepRange, ret.minStep, ret.maxStep)
	}
	// a racer may overshoot the finish by up to maxStep-1
	if ret.finishDistance > math.MaxInt-ret.maxStep {
		return nil, fmt.Errorf("%w: finish distance %d too large for max step %d",
			ErrInvalidTrack, ret.finishDistance, ret.maxStep)
	}
	if ret.src == nil {
		//nolint:gosec // not used for security
		ret.src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	for _, c := range odds.Colors() {
		ret.racers = append(ret.racers, &racer{color: c})
	}
	ret.finishers = make([]model.Finisher, 0, len(ret.racers))
	return ret, nil
}

func (s *Simulator) State() model.RaceState {
	return s.state
}

func (s *Simulator) FinishDistance() int {
	return s.finishDistance
}

// Run drives the race to completion and returns the complete outcome.
// If the race was already (partially) run via Ticks, it continues from there.
func (s *Simulator) Run() *model.RaceOutcome {
	for s.state != model.RaceFinished {
		s.step()
	}
	return s.Outcome()
}

// Ticks returns a lazy sequence of snapshots, one per tick, until every racer
// has finished. The sequence is not restartable: it continues from the current
// state and yields nothing for a finished race. Stopping early leaves the race
// running with a partial outcome.
func (s *Simulator) Ticks() iter.Seq[*model.Snapshot] {
	return func(yield func(*model.Snapshot) bool) {
		for s.state != model.RaceFinished {
			if !yield(s.step()) {
				return
			}
		}
	}
}

// Snapshot returns the current state of the race
func (s *Simulator) Snapshot() *model.Snapshot {
	ret := &model.Snapshot{
		Tick:           s.tick,
		FinishDistance: s.finishDistance,
		Racers:         make([]model.RacerState, len(s.racers)),
		State:          s.state,
	}
	for i, r := range s.racers {
		ret.Racers[i] = model.RacerState{
			Color:      r.color,
			Position:   r.position,
			Finished:   r.finishTick > 0,
			FinishTick: r.finishTick,
		}
	}
	return ret
}

// Outcome returns the finish order so far. It is complete once the race
// is finished.
func (s *Simulator) Outcome() *model.RaceOutcome {
	return &model.RaceOutcome{
		Finishers:  slices.Clone(s.finishers),
		RacerCount: len(s.racers),
	}
}

// step advances every unfinished racer once. Racers crossing the finish line
// in the same tick are recorded in iteration order, not by margin.
func (s *Simulator) step() *model.Snapshot {
	if s.state == model.RaceNotStarted {
		s.state = model.RaceRunning
		s.l.Debug("race started",
			log.Int("racers", len(s.racers)),
			log.Int("finishDistance", s.finishDistance))
	}
	s.tick++
	for _, r := range s.racers {
		if r.finishTick > 0 {
			continue
		}
		r.position += s.minStep + s.src.IntN(s.maxStep-s.minStep+1)
		if r.position >= s.finishDistance {
			r.finishTick = s.tick
			s.finishers = append(s.finishers, model.Finisher{Color: r.color, Tick: s.tick})
			s.l.Debug("racer finished",
				log.Stringer("color", r.color),
				log.Int("tick", s.tick),
				log.Int("rank", len(s.finishers)))
		}
	}
	if len(s.finishers) == len(s.racers) {
		s.state = model.RaceFinished
		s.l.Debug("race finished",
			log.Int("ticks", s.tick),
			log.Stringer("winner", s.finishers[0].Color))
	}
	snap := s.Snapshot()
	if s.observer != nil {
		s.observer(snap)
	}
	return snap
}
