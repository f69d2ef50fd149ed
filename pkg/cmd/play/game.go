package play

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/betting"
	"github.com/mpapenbr/turtlerace/pkg/model"
	"github.com/mpapenbr/turtlerace/pkg/session"
)

// errQuit signals the end of input
var errQuit = errors.New("quit")

type GameOption func(g *Game)

// Game is the console front end. It collects the bets, renders the race
// and reports the results. All game rules are handled by the session.
type Game struct {
	session    *session.Session
	in         *bufio.Scanner
	out        io.Writer
	tickDelay  time.Duration
	showTrack  bool
	showRank   bool
	redraw     bool
	trackWidth int
	l          *log.Logger
}

func WithTickDelay(d time.Duration) GameOption {
	return func(g *Game) {
		g.tickDelay = d
	}
}

func WithTrack(show, redraw bool) GameOption {
	return func(g *Game) {
		g.showTrack = show
		g.redraw = redraw
	}
}

// WithRank displays the current rank of the picked racer while racing
func WithRank(show bool) GameOption {
	return func(g *Game) {
		g.showRank = show
	}
}

func WithTrackWidth(w int) GameOption {
	return func(g *Game) {
		if w > 0 {
			g.trackWidth = w
		}
	}
}

//nolint:whitespace // can't make both editor and linter happy
func NewGame(
	s *session.Session, in io.Reader, out io.Writer, opts ...GameOption,
) *Game {
	ret := &Game{
		session:    s,
		in:         bufio.NewScanner(in),
		out:        out,
		showTrack:  true,
		trackWidth: defaultTrackWidth,
		l:          log.Default().Named("play"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run plays rounds until the player stops, runs out of tokens or ctx is done
func (g *Game) Run(ctx context.Context) error {
	defer g.summary()
	for {
		if !g.session.CanBet() {
			g.println("You have no tokens left. Game over.")
			return nil
		}
		err := g.playRound(ctx)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			return err
		}
		again, err := g.ask("Play again? (y/n): ")
		if err != nil || strings.ToLower(strings.TrimSpace(again)) != "y" {
			return nil
		}
	}
}

//nolint:funlen // by design
func (g *Game) playRound(ctx context.Context) error {
	g.println("\nWelcome to Turtle Race Betting!")
	g.printf("You have %d tokens.\n", g.session.Balance())
	g.println("Turtles available and their odds:")
	for _, e := range g.session.Odds().Entries() {
		g.printf("  %s: %s\n", e.Color, model.FormatMultiplier(e.Multiplier))
	}

	color, err := g.askColor()
	if err != nil {
		return err
	}
	round, err := g.askStake(color)
	if err != nil {
		return err
	}
	w := round.Wager()
	g.printf("%d tokens placed on %s. Tokens left: %d\n",
		w.Stake, w.Color, g.session.Balance())
	g.println("The race is starting!")

	var renderer *trackRenderer
	if g.showTrack {
		renderer = newTrackRenderer(g.out, g.trackWidth, g.redraw, g.session.Odds().Colors())
	}
	for snap := range round.Ticks() {
		if renderer != nil || g.showRank {
			g.renderTick(renderer, w.Color, snap)
		}
		if !g.pause(ctx) {
			g.println("\nRace interrupted.")
			if _, err := round.Abandon(); err != nil {
				return err
			}
			g.printf("Your stake of %d tokens is lost.\n", w.Stake)
			return errQuit
		}
	}

	res, err := round.Finish()
	if err != nil {
		return err
	}
	g.printf("The winner is the %s turtle!\n", res.Settlement.Winner)
	if rank, ok := res.Outcome.RankOf(w.Color); ok && !res.Settlement.Won {
		g.printf("Your %s turtle finished in position %d.\n", w.Color, rank)
	}
	if res.Settlement.Won {
		g.printf("Congratulations! You won %d tokens!\n", res.Settlement.Payout)
	} else {
		g.println("Sorry, you lost the bet.")
	}
	g.printf("Tokens now: %d\n", res.Settlement.Balance)
	return nil
}

func (g *Game) renderTick(r *trackRenderer, picked model.Color, snap *model.Snapshot) {
	extra := make([]string, 0, 1)
	if g.showRank {
		extra = append(extra, fmt.Sprintf("Your turtle (%s) is currently in position %d",
			picked, snap.Rank(picked)))
	}
	if r != nil {
		r.render(snap, extra...)
		return
	}
	for _, e := range extra {
		g.println(e)
	}
}

func (g *Game) pause(ctx context.Context) bool {
	if g.tickDelay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(g.tickDelay):
		return true
	}
}

func (g *Game) askColor() (model.Color, error) {
	input, err := g.ask("Enter the colour you want to bet on: ")
	for err == nil {
		c := model.NormalizeColor(input)
		if g.session.Odds().Has(c) {
			return c, nil
		}
		input, err = g.ask(fmt.Sprintf("Invalid colour. Choose from %s: ", g.colorList()))
	}
	return "", err
}

// askStake asks for the amount until the bet is accepted
func (g *Game) askStake(color model.Color) (*session.Round, error) {
	input, err := g.ask("Enter the number of tokens you want to bet: ")
	for err == nil {
		stake, convErr := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
		if convErr == nil {
			round, betErr := g.session.StartRound(color, stake)
			if betErr == nil {
				return round, nil
			}
			if !errors.Is(betErr, betting.ErrInvalidStake) {
				return nil, betErr
			}
			g.l.Debug("bet rejected", log.ErrorField(betErr))
		}
		input, err = g.ask(fmt.Sprintf(
			"Invalid bet amount. You have %d tokens. Enter a valid bet: ",
			g.session.Balance()))
	}
	return nil, err
}

func (g *Game) ask(prompt string) (string, error) {
	fmt.Fprint(g.out, prompt)
	if !g.in.Scan() {
		if err := g.in.Err(); err != nil {
			return "", err
		}
		fmt.Fprintln(g.out)
		return "", errQuit
	}
	return g.in.Text(), nil
}

func (g *Game) summary() {
	st := g.session.Stats()
	if st.Rounds > 0 {
		g.printf("\nRounds: %d, won: %d, lost: %d, staked: %d, paid out: %d, net: %+d\n",
			st.Rounds, st.Wins, st.Losses, st.Wagered, st.Paid, st.Net)
	}
	g.println("Thanks for playing!")
}

func (g *Game) colorList() string {
	colors := g.session.Odds().Colors()
	names := make([]string, len(colors))
	for i, c := range colors {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func (g *Game) println(s string) {
	fmt.Fprintln(g.out, s)
}

func (g *Game) printf(format string, args ...any) {
	fmt.Fprintf(g.out, format, args...)
}
