// Package ansitest verifies styled terminal output in tests.
//
//	ansitest.ForceColor()
//
//	out := render()
//	ansitest.New(out).AssertStyled(t, "work", ansitest.Style{
//	    Bold:       ansitest.Ptr(true),
//	    Foreground: ansitest.Ptr("5"),
//	})
package ansitest

import (
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

// ForceColor makes lipgloss emit colors even when stdout is not a terminal.
func ForceColor() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// Style is the expected style of some text. Nil fields are not checked.
// Colors are 256-color codes such as "5", or RGB hex such as "FF00AA".
type Style struct {
	Bold       *bool
	Italic     *bool
	Underline  *bool
	Foreground *string
	Background *string
}

// Verifier inspects the ANSI sequences in rendered output.
type Verifier struct {
	output string
}

func New(output string) *Verifier {
	return &Verifier{output: output}
}

// Plain returns the output with all escape sequences removed.
func (v *Verifier) Plain() string {
	return ansi.Strip(v.output)
}

// AssertStyled checks that the first run of text containing s has style want.
func (v *Verifier) AssertStyled(t *testing.T, s string, want Style) {
	t.Helper()

	if !assert.Contains(t, v.Plain(), s) {
		return
	}

	for _, r := range v.runs() {
		if strings.Contains(r.text, s) {
			r.style.check(t, s, want)

			return
		}
	}

	t.Errorf("%q is split across differently styled runs", s)
}

// run is text printed with one set of attributes.
type run struct {
	text  string
	style attrs
}

type attrs struct {
	fg        string
	bg        string
	bold      bool
	italic    bool
	underline bool
}

func (v *Verifier) runs() []run {
	var (
		runs    []run
		current attrs
		text    strings.Builder
		state   byte
	)

	input := []byte(v.output)

	p := ansi.GetParser()
	defer ansi.PutParser(p)

	for len(input) > 0 {
		seq, width, n, newState := ansi.DecodeSequence(input, state, p)

		switch {
		case ansi.HasCsiPrefix(seq) && seq[len(seq)-1] == 'm':
			if text.Len() > 0 {
				runs = append(runs, run{text: text.String(), style: current})
				text.Reset()
			}

			current = current.apply(p.Params())
		case width > 0:
			text.Write(seq)
		}

		input = input[n:]
		state = newState
	}

	if text.Len() > 0 {
		runs = append(runs, run{text: text.String(), style: current})
	}

	return runs
}

// apply returns a with the SGR parameters params applied.
func (a attrs) apply(params ansi.Params) attrs {
	for i := 0; i < len(params); i++ {
		param := params[i].Param(0)

		switch {
		case param == 0:
			a = attrs{}
		case param == 1:
			a.bold = true
		case param == 3:
			a.italic = true
		case param == 4:
			a.underline = true
		case param == 22:
			a.bold = false
		case param == 23:
			a.italic = false
		case param == 24:
			a.underline = false
		case param == 38, param == 48:
			color, skip := extendedColor(params[i+1:])
			if param == 38 {
				a.fg = color
			} else {
				a.bg = color
			}

			i += skip
		case param >= 30 && param <= 37:
			a.fg = strconv.Itoa(param - 30)
		case param >= 40 && param <= 47:
			a.bg = strconv.Itoa(param - 40)
		case param >= 90 && param <= 97:
			a.fg = strconv.Itoa(param - 90 + 8)
		case param >= 100 && param <= 107:
			a.bg = strconv.Itoa(param - 100 + 8)
		}
	}

	return a
}

// extendedColor decodes the parameters following 38 or 48, and returns the
// color and the number of parameters it used.
func extendedColor(params ansi.Params) (string, int) {
	if len(params) == 0 {
		return "", 0
	}

	switch params[0].Param(0) {
	case 5:
		if len(params) > 1 {
			return strconv.Itoa(params[1].Param(0)), 2
		}
	case 2:
		if len(params) > 3 {
			const hex = "0123456789ABCDEF"

			var b strings.Builder
			for _, c := range params[1:4] {
				v := c.Param(0)
				b.WriteByte(hex[v/16])
				b.WriteByte(hex[v%16])
			}

			return b.String(), 4
		}
	}

	return "", 1
}

func (a attrs) check(t *testing.T, s string, want Style) {
	t.Helper()

	if want.Bold != nil {
		assert.Equal(t, *want.Bold, a.bold, "bold of %q", s)
	}

	if want.Italic != nil {
		assert.Equal(t, *want.Italic, a.italic, "italic of %q", s)
	}

	if want.Underline != nil {
		assert.Equal(t, *want.Underline, a.underline, "underline of %q", s)
	}

	if want.Foreground != nil {
		assert.Equal(t, *want.Foreground, a.fg, "foreground of %q", s)
	}

	if want.Background != nil {
		assert.Equal(t, *want.Background, a.bg, "background of %q", s)
	}
}

// Ptr returns a pointer to v, for filling in [Style].
func Ptr[T any](v T) *T {
	return &v
}
