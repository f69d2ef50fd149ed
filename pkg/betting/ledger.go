package betting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/metrics"
	"github.com/mpapenbr/turtlerace/pkg/model"
)

var (
	ErrInvalidColor    = errors.New("invalid color")
	ErrInvalidStake    = errors.New("invalid stake")
	ErrRaceNotFinished = errors.New("race not finished")
	ErrAlreadySettled  = errors.New("wager already settled")
	ErrUnknownWager    = errors.New("unknown wager")
)

type Option func(l *Ledger)

// openWager is the ledger's own copy of a placed wager
type openWager struct {
	account *Account
	wager   model.Wager
}

// Ledger validates and settles wagers against a fixed odds table.
// It keeps its own copy of each placed wager, so a wager can only be settled
// once and changes to the returned Wager do not affect the settlement.
// Not safe for concurrent use.
type Ledger struct {
	odds        *model.OddsTable
	winningRank int
	clock       func() time.Time
	metrics     *metrics.Recorder
	open        map[uuid.UUID]openWager
	settled     map[uuid.UUID]struct{}
	l           *log.Logger
}

// WithWinningRank sets the finishing rank a wager must occupy to win.
// Default is 1 (first to finish).
func WithWinningRank(rank int) Option {
	return func(l *Ledger) {
		l.winningRank = rank
	}
}

func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(l *Ledger) {
		l.metrics = r
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) {
		l.l = logger
	}
}

func NewLedger(odds *model.OddsTable, opts ...Option) *Ledger {
	ret := &Ledger{
		odds:        odds,
		winningRank: 1,
		clock:       time.Now,
		open:        make(map[uuid.UUID]openWager),
		settled:     make(map[uuid.UUID]struct{}),
		l:           log.Default().Named("betting"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.winningRank < 1 {
		ret.winningRank = 1
	}
	return ret
}

func (l *Ledger) Odds() *model.OddsTable {
	return l.odds
}

func (l *Ledger) WinningRank() int {
	return l.winningRank
}

// OpenWagers returns the number of placed but not yet settled wagers
func (l *Ledger) OpenWagers() int {
	return len(l.open)
}

// PlaceBet validates the bet and debits the stake from the account.
// On error the account is not modified.
//
//nolint:whitespace // can't make both editor and linter happy
func (l *Ledger) PlaceBet(account *Account, color model.Color, stake int64) (
	*model.Wager, error,
) {
	c := model.NormalizeColor(string(color))
	odds, ok := l.odds.Multiplier(c)
	if !ok {
		return nil, fmt.Errorf("%w: %q, choose from %s",
			ErrInvalidColor, string(color), l.colorList())
	}
	if stake <= 0 || stake > account.Balance() {
		return nil, fmt.Errorf("%w: %d, balance is %d",
			ErrInvalidStake, stake, account.Balance())
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("could not create wager id: %w", err)
	}
	w := &model.Wager{
		ID:            id,
		Color:         c,
		Stake:         stake,
		Odds:          odds,
		BalanceBefore: account.balance,
		PlacedAt:      l.clock(),
	}
	account.balance -= stake
	l.open[id] = openWager{account: account, wager: *w}
	l.l.Debug("bet placed",
		log.Stringer("wager", id),
		log.Stringer("color", c),
		log.Int64("stake", stake),
		log.Int64("balance", account.balance))
	l.metrics.BetPlaced(context.Background(), c.String(), stake)
	return w, nil
}

// Settle resolves the wager against a complete race outcome and credits any
// payout to the account the wager was placed from. Only the ID of w is used,
// color, stake and odds are taken from the wager as it was placed.
//
//nolint:whitespace // can't make both editor and linter happy
func (l *Ledger) Settle(w *model.Wager, outcome *model.RaceOutcome) (
	*model.SettlementResult, error,
) {
	if w == nil {
		return nil, ErrUnknownWager
	}
	if _, ok := l.settled[w.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySettled, w.ID)
	}
	placed, ok := l.open[w.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWager, w.ID)
	}
	if !outcome.Complete() {
		return nil, ErrRaceNotFinished
	}
	account := placed.account
	w = &placed.wager

	winner, _ := outcome.Winner()
	ret := &model.SettlementResult{
		WagerID: w.ID,
		Color:   w.Color,
		Winner:  winner,
		Won:     outcome.Occupies(w.Color, l.winningRank),
	}
	if ret.Won {
		ret.Payout = model.Payout(w.Stake, w.Odds)
		account.balance += ret.Payout
	}
	ret.Net = ret.Payout - w.Stake
	ret.Balance = account.balance

	delete(l.open, w.ID)
	l.settled[w.ID] = struct{}{}
	l.l.Debug("wager settled",
		log.Stringer("wager", w.ID),
		log.Bool("won", ret.Won),
		log.Int64("payout", ret.Payout),
		log.Int64("balance", ret.Balance))
	l.metrics.BetSettled(context.Background(), w.Color.String(), ret.Won, ret.Payout)
	return ret, nil
}

// Forfeit resolves an open wager as lost without a race outcome, for example
// when the race was abandoned. The stake stays debited.
func (l *Ledger) Forfeit(w *model.Wager) (*model.SettlementResult, error) {
	if w == nil {
		return nil, ErrUnknownWager
	}
	if _, ok := l.settled[w.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySettled, w.ID)
	}
	placed, ok := l.open[w.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWager, w.ID)
	}
	ret := &model.SettlementResult{
		WagerID: placed.wager.ID,
		Color:   placed.wager.Color,
		Net:     -placed.wager.Stake,
		Balance: placed.account.balance,
	}
	delete(l.open, w.ID)
	l.settled[w.ID] = struct{}{}
	l.l.Debug("wager forfeited",
		log.Stringer("wager", w.ID),
		log.Int64("stake", placed.wager.Stake))
	l.metrics.BetSettled(context.Background(), placed.wager.Color.String(), false, 0)
	return ret, nil
}

func (l *Ledger) colorList() string {
	colors := l.odds.Colors()
	names := make([]string, len(colors))
	for i, c := range colors {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
