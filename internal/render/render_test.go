package render

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func testPalette() Palette {
	return Palette{
		Text:     lipgloss.Color("252"),
		Faint:    lipgloss.Color("244"),
		Accent:   lipgloss.Color("39"),
		Border:   lipgloss.Color("238"),
		Speakers: []lipgloss.Color{lipgloss.Color("39"), lipgloss.Color("208")},
	}
}

func TestSplitTurns(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []Turn
	}{
		{
			name:  "two speakers",
			input: "Socrates: Hello\nGlaucon: Hi",
			want:  []Turn{{Speaker: "Socrates", Body: "Hello\n"}, {Speaker: "Glaucon", Body: "Hi\n"}},
		},
		{
			name:  "narration first",
			input: "A quiet morning.\nSocrates: Shall we walk?",
			want:  []Turn{{Body: "A quiet morning.\n"}, {Speaker: "Socrates", Body: "Shall we walk?\n"}},
		},
		{
			name:  "label inside fence",
			input: "Socrates: look\n```\nNot: a turn\n```",
			want:  []Turn{{Speaker: "Socrates", Body: "look\n```\nNot: a turn\n```\n"}},
		},
		{
			name:  "lowercase is not a label",
			input: "note: plain text",
			want:  []Turn{{Body: "note: plain text\n"}},
		},
		{
			name:  "blank input",
			input: "  \n",
			want:  nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SplitTurns(tc.input); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitTurns(%q) = %#v, want %#v", tc.input, got, tc.want)
			}
		})
	}
}

func TestPlato_RenderShowsSpeakersAndBodies(t *testing.T) {
	p := New(60, testPalette())
	out, err := p.Render("Socrates: What is **justice**?\nGlaucon: Let us ask `Thrasymachus`.")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	plain := ansi.Strip(out)
	for _, want := range []string{"Socrates", "What is justice?", "Glaucon", "Let us ask Thrasymachus."} {
		if !strings.Contains(plain, want) {
			t.Fatalf("rendered output missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "**") {
		t.Fatalf("emphasis markers leaked into output:\n%s", plain)
	}
}

func TestPlato_RenderLists(t *testing.T) {
	p := New(60, testPalette())
	out, err := p.Render("Socrates: Consider\n\n- one\n- two")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	plain := ansi.Strip(out)
	if !strings.Contains(plain, "• one") || !strings.Contains(plain, "• two") {
		t.Fatalf("list bullets missing:\n%s", plain)
	}
}

func TestPlato_RenderWrapsToWidth(t *testing.T) {
	p := New(30, testPalette())
	out, err := p.Render("Socrates: " + strings.Repeat("word ", 30))
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := ansi.StringWidth(line); w > 30 {
			t.Fatalf("line width %d exceeds 30: %q", w, ansi.Strip(line))
		}
	}
}

func TestPlato_RenderRejectsInvalidUTF8(t *testing.T) {
	p := New(60, testPalette())
	if _, err := p.Render("Socrates: \xff"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Render error = %v, want ErrMalformed", err)
	}
}

type panicRenderer struct{}

func (panicRenderer) Render(string) (string, error) { panic("boom") }

type fixedRenderer struct {
	out string
	err error
}

func (f fixedRenderer) Render(string) (string, error) { return f.out, f.err }

func TestTry(t *testing.T) {
	if res := Try(panicRenderer{}, "x"); res.OK() || res.Err == nil {
		t.Fatalf("Try(panic) = %#v, want error", res)
	}
	if res := Try(nil, "x"); res.OK() {
		t.Fatalf("Try(nil) = %#v, want error", res)
	}
	sentinel := errors.New("bad")
	if res := Try(fixedRenderer{err: sentinel}, "x"); !errors.Is(res.Err, sentinel) {
		t.Fatalf("Try(err) = %#v, want sentinel", res)
	}
	if res := Try(fixedRenderer{out: "frag"}, "x"); !res.OK() || res.Fragment != "frag" {
		t.Fatalf("Try(ok) = %#v, want frag", res)
	}
}
