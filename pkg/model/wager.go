package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Wager is a single bet. It is never modified after creation.
type Wager struct {
	ID            uuid.UUID
	Color         Color
	Stake         int64
	Odds          decimal.Decimal
	BalanceBefore int64 // tokens held before the stake was debited
	PlacedAt      time.Time
}

// PotentialPayout is the amount credited if the wager wins
func (w *Wager) PotentialPayout() int64 {
	return Payout(w.Stake, w.Odds)
}

// Payout computes floor(stake * odds) without floating point rounding issues
func Payout(stake int64, odds decimal.Decimal) int64 {
	return decimal.NewFromInt(stake).Mul(odds).Floor().IntPart()
}

type SettlementResult struct {
	WagerID uuid.UUID
	Color   Color
	Winner  Color
	Won     bool
	Payout  int64
	Net     int64 // payout minus stake
	Balance int64 // balance after settlement
}
