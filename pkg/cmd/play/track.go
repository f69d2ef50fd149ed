package play

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mpapenbr/turtlerace/pkg/model"
)

const defaultTrackWidth = 60

// trackRenderer draws the race as text, one line per racer
type trackRenderer struct {
	out      io.Writer
	width    int
	redraw   bool // move the cursor up to overwrite the previous frame
	drawn    int  // lines of the previous frame
	labelLen int
	title    cases.Caser
}

func newTrackRenderer(out io.Writer, width int, redraw bool, colors []model.Color) *trackRenderer {
	ret := &trackRenderer{
		out:    out,
		width:  width,
		redraw: redraw,
		title:  cases.Title(language.English),
	}
	for _, c := range colors {
		ret.labelLen = max(ret.labelLen, len(c))
	}
	return ret
}

func (r *trackRenderer) column(pos, finish int) int {
	if pos >= finish {
		return r.width
	}
	return pos * r.width / finish
}

func (r *trackRenderer) render(s *model.Snapshot, extra ...string) {
	if r.redraw && r.drawn > 0 {
		fmt.Fprintf(r.out, "\033[%dA", r.drawn)
	}
	eol := "\n"
	if r.redraw {
		eol = "\033[K\n"
	}
	lines := 0
	for _, racer := range s.Racers {
		col := r.column(racer.Position, s.FinishDistance)
		marker := "@>"
		if racer.Finished {
			marker = "@|"
		}
		fmt.Fprintf(r.out, "%-*s %s%s%s%s",
			r.labelLen, r.title.String(racer.Color.String()),
			strings.Repeat(".", col),
			marker,
			strings.Repeat(" ", r.width-col),
			eol)
		lines++
	}
	for _, e := range extra {
		fmt.Fprintf(r.out, "%s%s", e, eol)
		lines++
	}
	r.drawn = lines
}
