package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/turtlerace/log"
)

// Recorder holds the instruments for race and betting activity.
// All methods may be called on a nil Recorder, they do nothing then.
type Recorder struct {
	races       metric.Int64Counter
	ticks       metric.Int64Counter
	bets        metric.Int64Counter
	betTokens   metric.Int64Counter
	settlements metric.Int64Counter
	payout      metric.Int64Counter
}

// NewRecorder registers the instruments with the global meter provider.
// Instruments which could not be created are logged and replaced by noops.
func NewRecorder(name string) *Recorder {
	meter := otel.GetMeterProvider().Meter(fmt.Sprintf("trb.%s", name))
	counter := func(metricName, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(metricName,
			metric.WithDescription(desc),
			metric.WithUnit(unit))
		if err != nil {
			log.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
		return c
	}
	return &Recorder{
		races:       counter("trb.race.count", "Number of completed races", "{race}"),
		ticks:       counter("trb.race.ticks", "Number of simulated ticks", "{tick}"),
		bets:        counter("trb.bet.count", "Number of placed bets", "{bet}"),
		betTokens:   counter("trb.bet.tokens", "Tokens staked", "{token}"),
		settlements: counter("trb.settlement.count", "Number of settled bets", "{bet}"),
		payout:      counter("trb.settlement.payout", "Tokens paid out", "{token}"),
	}
}

func (r *Recorder) RaceFinished(ctx context.Context, ticks int, winner string) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("winner", winner))
	add(ctx, r.races, 1, attrs)
	add(ctx, r.ticks, int64(ticks), attrs)
}

func (r *Recorder) BetPlaced(ctx context.Context, color string, stake int64) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("color", color))
	add(ctx, r.bets, 1, attrs)
	add(ctx, r.betTokens, stake, attrs)
}

func (r *Recorder) BetSettled(ctx context.Context, color string, won bool, payout int64) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("color", color),
		attribute.Bool("won", won))
	add(ctx, r.settlements, 1, attrs)
	add(ctx, r.payout, payout, attrs)
}

func add(ctx context.Context, c metric.Int64Counter, v int64, opts ...metric.AddOption) {
	if c == nil {
		return
	}
	c.Add(ctx, v, opts...)
}
