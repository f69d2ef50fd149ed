package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/metrics"
	"github.com/mpapenbr/turtlerace/pkg/model"
	"github.com/mpapenbr/turtlerace/pkg/race"
)

var ErrInvalidRaces = errors.New("invalid number of races")

type (
	ColorStats struct {
		Color  model.Color
		Odds   decimal.Decimal
		Wins   int
		Share  decimal.Decimal // share of races won
		AvgPos decimal.Decimal // average finishing rank
		// expected return per staked token on a win bet (share * odds - 1)
		Expected decimal.Decimal
	}
	Report struct {
		Races    int
		AvgTicks decimal.Decimal
		Colors   []ColorStats
	}
)

// Run simulates the given number of races. Each race gets its own seed
// derived from seed, so the report is reproducible.
//
//nolint:whitespace // can't make both editor and linter happy
func Run(
	odds *model.OddsTable,
	races int,
	seed int64,
	rec *metrics.Recorder,
	opts ...race.Option,
) (*Report, error) {
	if races < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRaces, races)
	}
	//nolint:gosec // not used for security
	seeds := rand.New(rand.NewPCG(uint64(seed), 0))
	outcomes := make([]*model.RaceOutcome, 0, races)
	totalTicks := 0
	for i := 0; i < races; i++ {
		sim, err := race.NewSimulator(odds,
			append([]race.Option{
				race.WithSeed(seeds.Int64()),
				race.WithLogger(log.Default().Named("race")),
			}, opts...)...)
		if err != nil {
			return nil, err
		}
		o := sim.Run()
		outcomes = append(outcomes, o)
		ticks := o.Finishers[len(o.Finishers)-1].Tick
		totalTicks += ticks
		winner, _ := o.Winner()
		rec.RaceFinished(context.Background(), ticks, winner.String())
	}
	return buildReport(odds, outcomes, totalTicks), nil
}

//nolint:whitespace // can't make both editor and linter happy
func buildReport(
	odds *model.OddsTable, outcomes []*model.RaceOutcome, totalTicks int,
) *Report {
	ret := &Report{Races: len(outcomes)}
	if len(outcomes) == 0 {
		return ret
	}
	n := decimal.NewFromInt(int64(len(outcomes)))
	ret.AvgTicks = decimal.NewFromInt(int64(totalTicks)).DivRound(n, 2)

	winners := lo.CountValues(lo.FilterMap(outcomes,
		func(o *model.RaceOutcome, _ int) (model.Color, bool) { return o.Winner() }))

	ret.Colors = lo.Map(odds.Entries(), func(e model.OddsEntry, _ int) ColorStats {
		share := decimal.NewFromInt(int64(winners[e.Color])).DivRound(n, 4)
		rankSum := lo.SumBy(outcomes, func(o *model.RaceOutcome) int {
			r, _ := o.RankOf(e.Color)
			return r
		})
		return ColorStats{
			Color:    e.Color,
			Odds:     e.Multiplier,
			Wins:     winners[e.Color],
			Share:    share,
			AvgPos:   decimal.NewFromInt(int64(rankSum)).DivRound(n, 2),
			Expected: share.Mul(e.Multiplier).Sub(decimal.NewFromInt(1)).Round(4),
		}
	})
	return ret
}
