package session

import (
	"context"
	"errors"
	"iter"
	"math/rand/v2"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/betting"
	"github.com/mpapenbr/turtlerace/pkg/metrics"
	"github.com/mpapenbr/turtlerace/pkg/model"
	"github.com/mpapenbr/turtlerace/pkg/race"
)

var (
	ErrRoundInProgress = errors.New("round in progress")
	ErrNoActiveRound   = errors.New("no active round")
)

type (
	Option func(s *Session)

	// RoundResult is the history entry of a finished round
	RoundResult struct {
		Wager      *model.Wager
		Outcome    *model.RaceOutcome
		Settlement *model.SettlementResult
		Ticks      int
	}

	Stats struct {
		Rounds  int
		Wins    int
		Losses  int
		Wagered int64
		Paid    int64
		Net     int64
	}
)

// Session is one player's game: the account, the ledger and the race setup.
// A session replaces any process wide game state. Not safe for concurrent use.
type Session struct {
	odds         *model.OddsTable
	account      *betting.Account
	ledger       *betting.Ledger
	startBalance int64
	raceOpts     []race.Option
	ledgerOpts   []betting.Option
	seedSource   func() int64
	metrics      *metrics.Recorder
	tracer       trace.Tracer
	current      *Round
	history      []RoundResult
	l            *log.Logger
}

func WithStartBalance(balance int64) Option {
	return func(s *Session) {
		s.startBalance = balance
	}
}

// WithRaceOptions are applied to each race of the session
func WithRaceOptions(opts ...race.Option) Option {
	return func(s *Session) {
		s.raceOpts = append(s.raceOpts, opts...)
	}
}

func WithLedgerOptions(opts ...betting.Option) Option {
	return func(s *Session) {
		s.ledgerOpts = append(s.ledgerOpts, opts...)
	}
}

// WithSeedSource provides the seed for each race. Use it to get reproducible
// sessions.
func WithSeedSource(src func() int64) Option {
	return func(s *Session) {
		s.seedSource = src
	}
}

// WithSeed derives the seeds of all races from a single seed
func WithSeed(seed int64) Option {
	return func(s *Session) {
		//nolint:gosec // not used for security
		r := rand.New(rand.NewPCG(uint64(seed), 0))
		s.seedSource = func() int64 { return r.Int64() }
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Session) {
		s.metrics = r
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.l = l
	}
}

// WithTracer sets the tracer used for the round spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Session) {
		s.tracer = tracer
	}
}

func New(odds *model.OddsTable, opts ...Option) *Session {
	ret := &Session{
		odds:         odds,
		startBalance: betting.DefaultStartBalance,
		history:      make([]RoundResult, 0),
		l:            log.Default().Named("session"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("trb")
	}
	ret.account = betting.NewAccount(ret.startBalance)
	ledgerOpts := []betting.Option{betting.WithLogger(ret.l.Named("betting"))}
	if ret.metrics != nil {
		ledgerOpts = append(ledgerOpts, betting.WithMetrics(ret.metrics))
	}
	ret.ledger = betting.NewLedger(odds, append(ledgerOpts, ret.ledgerOpts...)...)
	return ret
}

func (s *Session) Odds() *model.OddsTable {
	return s.odds
}

func (s *Session) Balance() int64 {
	return s.account.Balance()
}

// CanBet reports whether the player has tokens left
func (s *Session) CanBet() bool {
	return s.account.Balance() > 0
}

// Current returns the active round or nil
func (s *Session) Current() *Round {
	return s.current
}

// StartRound places the bet and prepares the race.
// Only one round may be active at a time.
func (s *Session) StartRound(color model.Color, stake int64) (*Round, error) {
	if s.current != nil {
		return nil, ErrRoundInProgress
	}
	opts := []race.Option{race.WithLogger(s.l.Named("race"))}
	if s.seedSource != nil {
		opts = append(opts, race.WithSeed(s.seedSource()))
	}
	// build the race first, a configuration error must not cost tokens
	sim, err := race.NewSimulator(s.odds, append(opts, s.raceOpts...)...)
	if err != nil {
		return nil, err
	}
	_, span := s.tracer.Start(context.Background(), "round")
	w, err := s.ledger.PlaceBet(s.account, color, stake)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	span.SetAttributes(
		attribute.String("wager", w.ID.String()),
		attribute.String("color", w.Color.String()),
		attribute.Int64("stake", w.Stake))
	s.current = &Round{session: s, wager: w, sim: sim, span: span}
	s.l.Info("round started",
		log.Stringer("color", w.Color),
		log.Int64("stake", w.Stake),
		log.Int64("balance", s.account.Balance()))
	return s.current, nil
}

func (s *Session) History() []RoundResult {
	return append([]RoundResult(nil), s.history...)
}

func (s *Session) Stats() Stats {
	wins := lo.CountBy(s.history, func(r RoundResult) bool { return r.Settlement.Won })
	return Stats{
		Rounds:  len(s.history),
		Wins:    wins,
		Losses:  len(s.history) - wins,
		Wagered: lo.SumBy(s.history, func(r RoundResult) int64 { return r.Wager.Stake }),
		Paid:    lo.SumBy(s.history, func(r RoundResult) int64 { return r.Settlement.Payout }),
		Net:     lo.SumBy(s.history, func(r RoundResult) int64 { return r.Settlement.Net }),
	}
}

// Round is a placed bet together with its race
type Round struct {
	session *Session
	wager   *model.Wager
	sim     *race.Simulator
	span    trace.Span
	result  *RoundResult
}

func (r *Round) Wager() *model.Wager {
	return r.wager
}

func (r *Round) FinishDistance() int {
	return r.sim.FinishDistance()
}

// Ticks pulls the race tick by tick, see race.Simulator.Ticks
func (r *Round) Ticks() iter.Seq[*model.Snapshot] {
	return r.sim.Ticks()
}

func (r *Round) Snapshot() *model.Snapshot {
	return r.sim.Snapshot()
}

// Finish runs the remaining ticks, settles the wager and records the round.
// Calling Finish again returns the recorded result.
func (r *Round) Finish() (*RoundResult, error) {
	if r.result != nil {
		return r.result, nil
	}
	s := r.session
	if s.current != r {
		return nil, ErrNoActiveRound
	}
	outcome := r.sim.Run()
	ticks := r.sim.Snapshot().Tick
	winner, _ := outcome.Winner()
	s.metrics.RaceFinished(context.Background(), ticks, winner.String())

	settlement, err := s.ledger.Settle(r.wager, outcome)
	if err != nil {
		r.span.SetStatus(codes.Error, err.Error())
		r.span.End()
		return nil, err
	}
	r.span.SetAttributes(
		attribute.String("winner", winner.String()),
		attribute.Int("ticks", ticks),
		attribute.Bool("won", settlement.Won),
		attribute.Int64("payout", settlement.Payout))
	r.span.End()
	r.result = &RoundResult{
		Wager:      r.wager,
		Outcome:    outcome,
		Settlement: settlement,
		Ticks:      ticks,
	}
	s.history = append(s.history, *r.result)
	s.current = nil
	s.l.Info("round finished",
		log.Stringer("winner", winner),
		log.Bool("won", settlement.Won),
		log.Int64("payout", settlement.Payout),
		log.Int64("balance", settlement.Balance))
	return r.result, nil
}

// Abandon stops the round without finishing the race. The wager is forfeited,
// the stake is not refunded. The round is recorded as lost with the partial
// outcome. Calling Abandon on a completed round returns the recorded result.
func (r *Round) Abandon() (*RoundResult, error) {
	if r.result != nil {
		return r.result, nil
	}
	s := r.session
	if s.current != r {
		return nil, ErrNoActiveRound
	}
	settlement, err := s.ledger.Forfeit(r.wager)
	if err != nil {
		r.span.SetStatus(codes.Error, err.Error())
		r.span.End()
		return nil, err
	}
	ticks := r.sim.Snapshot().Tick
	r.span.SetAttributes(
		attribute.Bool("abandoned", true),
		attribute.Int("ticks", ticks))
	r.span.End()
	r.result = &RoundResult{
		Wager:      r.wager,
		Outcome:    r.sim.Outcome(),
		Settlement: settlement,
		Ticks:      ticks,
	}
	s.history = append(s.history, *r.result)
	s.current = nil
	s.l.Info("round abandoned",
		log.Int64("stake", r.wager.Stake),
		log.Int64("balance", settlement.Balance))
	return r.result, nil
}
