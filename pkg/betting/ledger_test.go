//nolint:thelper,whitespace,lll,funlen,dupl // ok for tests
package betting

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/model"
	"github.com/mpapenbr/turtlerace/pkg/race"
	"github.com/mpapenbr/turtlerace/testsupport/basedata"
)

func newTestLedger(opts ...Option) *Ledger {
	return NewLedger(model.DefaultOdds(),
		append([]Option{
			WithLogger(log.Nop()),
			WithClock(basedata.TestTime),
		}, opts...)...)
}

// outcome builds a complete outcome of the default odds table with first as winner
func outcome(first ...model.Color) *model.RaceOutcome {
	ret := &model.RaceOutcome{RacerCount: 6}
	seen := map[model.Color]bool{}
	for i, c := range first {
		ret.Finishers = append(ret.Finishers, model.Finisher{Color: c, Tick: 70 + i})
		seen[c] = true
	}
	for _, c := range model.DefaultOdds().Colors() {
		if !seen[c] {
			ret.Finishers = append(ret.Finishers, model.Finisher{Color: c, Tick: 90})
		}
	}
	return ret
}

func TestLedger_PlaceBet(t *testing.T) {
	l := newTestLedger()
	acc := NewAccount(100)

	w, err := l.PlaceBet(acc, "yellow", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(80), acc.Balance())
	assert.Equal(t, model.Color("yellow"), w.Color)
	assert.Equal(t, int64(20), w.Stake)
	assert.Equal(t, int64(100), w.BalanceBefore)
	assert.Equal(t, "1.2", w.Odds.String())
	assert.Equal(t, basedata.TestTime(), w.PlacedAt)
	assert.False(t, w.ID.IsNil())
	assert.Equal(t, 1, l.OpenWagers())
}

func TestLedger_PlaceBetNormalizesColor(t *testing.T) {
	l := newTestLedger()
	acc := NewAccount(100)
	w, err := l.PlaceBet(acc, "  Purple ", 100)
	require.NoError(t, err)
	assert.Equal(t, model.Color("purple"), w.Color)
	assert.Equal(t, int64(0), acc.Balance())
}

func TestLedger_PlaceBetInvalid(t *testing.T) {
	tests := []struct {
		name    string
		color   model.Color
		stake   int64
		wantErr error
	}{
		{"unknown color", "pink", 10, ErrInvalidColor},
		{"empty color", "", 10, ErrInvalidColor},
		{"zero stake", "red", 0, ErrInvalidStake},
		{"negative stake", "red", -5, ErrInvalidStake},
		{"stake above balance", "red", 101, ErrInvalidStake},
		{"color checked first", "pink", 0, ErrInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger()
			acc := NewAccount(100)
			w, err := l.PlaceBet(acc, tt.color, tt.stake)
			assert.Nil(t, w)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, int64(100), acc.Balance())
			assert.Equal(t, 0, l.OpenWagers())
		})
	}
}

func TestLedger_SettleWin(t *testing.T) {
	l := newTestLedger()
	acc := NewAccount(100)
	w, err := l.PlaceBet(acc, "yellow", 20)
	require.NoError(t, err)

	res, err := l.Settle(w, outcome("yellow"))
	require.NoError(t, err)
	assert.Equal(t, &model.SettlementResult{
		WagerID: w.ID,
		Color:   "yellow",
		Winner:  "yellow",
		Won:     true,
		Payout:  24,
		Net:     4,
		Balance: 104,
	}, res)
	assert.Equal(t, int64(104), acc.Balance())
	assert.Equal(t, 0, l.OpenWagers())
}

func TestLedger_SettleLoss(t *testing.T) {
	l := newTestLedger()
	acc := NewAccount(100)
	w, err := l.PlaceBet(acc, "yellow", 20)
	require.NoError(t, err)

	res, err := l.Settle(w, outcome("red", "yellow"))
	require.NoError(t, err)
	assert.False(t, res.Won)
	assert.Equal(t, model.Color("red"), res.Winner)
	assert.Equal(t, int64(0), res.Payout)
	assert.Equal(t, int64(-20), res.Net)
	assert.Equal(t, int64(80), acc.Balance())
}

func TestLedger_SettleTwice(t *testing.T) {
	l := newTestLedger()
	acc := NewAccount(100)
	w, err := l.PlaceBet(acc, "purple", 10)
	require.NoError(t, err)

	_, err = l.Settle(w, outcome("purple"))
	require.NoError(t, err)
	assert.Equal(t, int64(120), acc.Balance())

	_, err = l.Settle(w, outcome("purple"))
	assert.True(t, errors.Is(err, ErrAlreadySettled), "got %v", err)
	assert.Equal(t, int64(120), acc.Balance())
}

func TestLedger_SettleUsesPlacedWager(t *testing.T) {
	l := newTestLedger()
	acc := NewAccount(100)
	w, err := l.PlaceBet(acc, "yellow", 10)
	require.NoError(t, err)

	w.Color = "red"
	w.Stake = 1000
	w.Odds = decimal.NewFromInt(50)

	res, err := l.Settle(w, outcome("red", "yellow"))
	require.NoError(t, err)
	assert.False(t, res.Won)
	assert.Equal(t, model.Color("yellow"), res.Color)
	assert.Equal(t, int64(0), res.Payout)
	assert.Equal(t, int64(-10), res.Net)
	assert.Equal(t, int64(90), acc.Balance())
}

func TestLedger_Forfeit(t *testing.T) {
	l := newTestLedger()
	acc := NewAccount(100)
	w, err := l.PlaceBet(acc, "green", 30)
	require.NoError(t, err)

	res, err := l.Forfeit(w)
	require.NoError(t, err)
	assert.Equal(t, &model.SettlementResult{
		WagerID: w.ID,
		Color:   "green",
		Net:     -30,
		Balance: 70,
	}, res)
	assert.Equal(t, int64(70), acc.Balance())
	assert.Equal(t, 0, l.OpenWagers())

	_, err = l.Settle(w, outcome("green"))
	assert.True(t, errors.Is(err, ErrAlreadySettled), "got %v", err)
	_, err = l.Forfeit(w)
	assert.True(t, errors.Is(err, ErrAlreadySettled), "got %v", err)
	assert.Equal(t, int64(70), acc.Balance())

	_, err = l.Forfeit(nil)
	assert.True(t, errors.Is(err, ErrUnknownWager), "got %v", err)
}

func TestLedger_SettleUnfinished(t *testing.T) {
	l := newTestLedger()
	acc := NewAccount(100)
	w, err := l.PlaceBet(acc, "red", 10)
	require.NoError(t, err)

	partial := &model.RaceOutcome{
		Finishers:  []model.Finisher{{Color: "red", Tick: 80}},
		RacerCount: 6,
	}
	_, err = l.Settle(w, partial)
	assert.True(t, errors.Is(err, ErrRaceNotFinished))
	_, err = l.Settle(w, nil)
	assert.True(t, errors.Is(err, ErrRaceNotFinished))
	assert.Equal(t, int64(90), acc.Balance())
	assert.Equal(t, 1, l.OpenWagers())

	// the wager stays open and can be settled with the complete outcome
	res, err := l.Settle(w, outcome("red"))
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.Payout)
	assert.Equal(t, int64(105), acc.Balance())
}

func TestLedger_SettleUnknown(t *testing.T) {
	l := newTestLedger()
	other := newTestLedger()
	acc := NewAccount(100)
	w, err := other.PlaceBet(acc, "red", 10)
	require.NoError(t, err)

	_, err = l.Settle(w, outcome("red"))
	assert.True(t, errors.Is(err, ErrUnknownWager))
	_, err = l.Settle(nil, outcome("red"))
	assert.True(t, errors.Is(err, ErrUnknownWager))
	assert.Equal(t, int64(90), acc.Balance())
}

func TestLedger_WinningRank(t *testing.T) {
	l := newTestLedger(WithWinningRank(2))
	acc := NewAccount(100)
	w, err := l.PlaceBet(acc, "blue", 10)
	require.NoError(t, err)

	res, err := l.Settle(w, outcome("red", "blue"))
	require.NoError(t, err)
	assert.True(t, res.Won)
	assert.Equal(t, int64(20), res.Payout)
	assert.Equal(t, int64(110), acc.Balance())

	assert.Equal(t, 1, newTestLedger(WithWinningRank(0)).WinningRank())
}

func TestLedger_SettleSimulatedRace(t *testing.T) {
	l := newTestLedger()
	for seed := int64(1); seed <= 20; seed++ {
		acc := NewAccount(100)
		w, err := l.PlaceBet(acc, "yellow", 20)
		require.NoError(t, err)

		sim, err := race.NewSimulator(l.Odds(), race.WithSeed(seed), race.WithLogger(log.Nop()))
		require.NoError(t, err)
		o := sim.Run()

		res, err := l.Settle(w, o)
		require.NoError(t, err)
		if winner, _ := o.Winner(); winner == "yellow" {
			assert.True(t, res.Won)
			assert.Equal(t, int64(104), acc.Balance())
		} else {
			assert.False(t, res.Won)
			assert.Equal(t, int64(80), acc.Balance())
		}
	}
}
