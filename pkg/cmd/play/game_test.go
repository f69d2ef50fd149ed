//nolint:thelper,whitespace,lll,funlen // ok for tests
package play

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/race"
	"github.com/mpapenbr/turtlerace/pkg/session"
	"github.com/mpapenbr/turtlerace/testsupport/basedata"
)

// every race of this session ends red, blue, green
func scriptedSession(opts ...session.Option) *session.Session {
	script := basedata.NewStepScript(1, 4, 6, 5, 6, 9, 3, 2)
	return session.New(basedata.SampleOdds(),
		append([]session.Option{
			session.WithLogger(log.Nop()),
			session.WithRaceOptions(race.WithFinishDistance(10), race.WithStepSource(script)),
		}, opts...)...)
}

func runGame(t *testing.T, s *session.Session, input string, opts ...GameOption) string {
	out := &bytes.Buffer{}
	g := NewGame(s, strings.NewReader(input), out, opts...)
	require.NoError(t, g.Run(context.Background()))
	return out.String()
}

func TestGame_TwoRounds(t *testing.T) {
	s := scriptedSession()
	out := runGame(t, s, "pink\nRED\nabc\n500\n20\ny\nblue\n10\nn\n",
		WithTrack(false, false), WithRank(true))

	for _, want := range []string{
		"You have 100 tokens.",
		"  blue: 2.0",
		"Invalid colour. Choose from red, blue, green: ",
		"20 tokens placed on red. Tokens left: 80",
		"The race is starting!",
		"Your turtle (red) is currently in position 3",
		"The winner is the red turtle!",
		"Congratulations! You won 30 tokens!",
		"Tokens now: 110",
		"10 tokens placed on blue. Tokens left: 100",
		"Your blue turtle finished in position 2.",
		"Sorry, you lost the bet.",
		"Tokens now: 100",
		"Rounds: 2, won: 1, lost: 1, staked: 30, paid out: 30, net: +0",
		"Thanks for playing!",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 2, strings.Count(out,
		"Invalid bet amount. You have 100 tokens. Enter a valid bet: "))
	assert.Equal(t, int64(100), s.Balance())
}

func TestGame_Track(t *testing.T) {
	s := scriptedSession()
	out := runGame(t, s, "green\n5\nn\n", WithTrack(true, false), WithTrackWidth(10))

	assert.Contains(t, out, "Red   ....@>")
	assert.Contains(t, out, "Blue  ..........@|")
	assert.Contains(t, out, "Green ..........@|")
	assert.NotContains(t, out, "\033[")
}

func TestGame_EndOfInput(t *testing.T) {
	s := scriptedSession()
	out := runGame(t, s, "red\n")
	assert.Contains(t, out, "Thanks for playing!")
	assert.NotContains(t, out, "Rounds:")
	assert.Equal(t, int64(100), s.Balance())
	assert.Nil(t, s.Current())
}

func TestGame_GameOver(t *testing.T) {
	s := scriptedSession(session.WithStartBalance(10))
	out := runGame(t, s, "green\n10\ny\n", WithTrack(false, false))
	assert.Contains(t, out, "Tokens now: 0")
	assert.Contains(t, out, "You have no tokens left. Game over.")
	assert.Contains(t, out, "Thanks for playing!")
}

func TestGame_Interrupted(t *testing.T) {
	s := scriptedSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := &bytes.Buffer{}
	g := NewGame(s, strings.NewReader("red\n10\n"), out, WithTrack(false, false))
	require.NoError(t, g.Run(ctx))
	assert.Contains(t, out.String(), "Race interrupted.")
	assert.Contains(t, out.String(), "Your stake of 10 tokens is lost.")
	assert.NotContains(t, out.String(), "The winner is")
	assert.Contains(t, out.String(), "Rounds: 1, won: 0, lost: 1, staked: 10, paid out: 0, net: -10")
	assert.Equal(t, int64(90), s.Balance())
	assert.Nil(t, s.Current())
}
