package render

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// ErrMalformed is returned for input that is not valid UTF-8 text.
var ErrMalformed = errors.New("malformed plato text")

// Renderer turns Plato text into a displayable fragment.
type Renderer interface {
	Render(text string) (string, error)
}

// Result is the outcome of one render call: a fragment or an error.
type Result struct {
	Fragment string
	Err      error
}

// OK reports whether rendering produced a fragment.
func (r Result) OK() bool {
	return r.Err == nil
}

// Try runs r and converts both returned errors and panics into a Result.
func Try(r Renderer, text string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Err: fmt.Errorf("render panic: %v", p)}
		}
	}()
	if r == nil {
		return Result{Err: errors.New("no renderer configured")}
	}
	fragment, err := r.Render(text)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Fragment: fragment}
}

// Palette holds the colors the renderer paints with.
type Palette struct {
	Text     lipgloss.Color
	Faint    lipgloss.Color
	Accent   lipgloss.Color
	Border   lipgloss.Color
	Speakers []lipgloss.Color
}

const (
	defaultWidth = 80
	minWidth     = 20
)

// turnPattern matches a speaker label at the start of a line: "Name: text".
var turnPattern = regexp.MustCompile(`^([\p{Lu}][\p{L}\p{N} ._'-]{0,39}):(?:\s+|$)`)

var (
	parserOnce sync.Once
	parser     goldmark.Markdown
)

func markdown() goldmark.Markdown {
	parserOnce.Do(func() {
		parser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return parser
}

// Plato renders Plato dialogue text for the terminal. A dialogue is a
// sequence of turns, each introduced by a "Speaker:" label at the start of
// a line; turn bodies are Markdown.
type Plato struct {
	mu      sync.Mutex
	width   int
	palette Palette
	styler  *lipgloss.Renderer
}

// New returns a Plato renderer wrapping at width columns.
func New(width int, palette Palette) *Plato {
	styler := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	styler.SetColorProfile(termenv.ANSI256)
	p := &Plato{palette: palette, styler: styler}
	p.SetWidth(width)
	return p
}

// SetWidth changes the wrap width for subsequent renders.
func (p *Plato) SetWidth(width int) {
	if width <= 0 {
		width = defaultWidth
	}
	if width < minWidth {
		width = minWidth
	}
	p.mu.Lock()
	p.width = width
	p.mu.Unlock()
}

// SetPalette swaps the colors used for subsequent renders.
func (p *Plato) SetPalette(palette Palette) {
	p.mu.Lock()
	p.palette = palette
	p.mu.Unlock()
}

// Render implements Renderer.
func (p *Plato) Render(input string) (string, error) {
	if !utf8.ValidString(input) {
		return "", ErrMalformed
	}
	p.mu.Lock()
	width, palette := p.width, p.palette
	p.mu.Unlock()

	var out strings.Builder
	speakers := map[string]int{}
	for i, turn := range SplitTurns(input) {
		if i > 0 {
			out.WriteString("\n")
		}
		if turn.Speaker != "" {
			idx, ok := speakers[turn.Speaker]
			if !ok {
				idx = len(speakers)
				speakers[turn.Speaker] = idx
			}
			out.WriteString(p.speakerLabel(turn.Speaker, idx, palette))
			out.WriteString("\n")
		}
		body := p.renderMarkdown(turn.Body, width, palette)
		if body != "" {
			out.WriteString(body)
			out.WriteString("\n")
		}
	}
	return strings.TrimRight(out.String(), "\n"), nil
}

func (p *Plato) speakerLabel(name string, idx int, palette Palette) string {
	color := palette.Accent
	if len(palette.Speakers) > 0 {
		color = palette.Speakers[idx%len(palette.Speakers)]
	}
	return p.styler.NewStyle().Foreground(color).Bold(true).Render(name)
}

func (p *Plato) renderMarkdown(body string, width int, palette Palette) string {
	body = strings.Trim(body, "\n")
	if strings.TrimSpace(body) == "" {
		return ""
	}
	source := []byte(body)
	doc := markdown().Parser().Parse(text.NewReader(source))
	w := &walker{
		source:  source,
		width:   width,
		palette: palette,
		styler:  p.styler,
	}
	w.run(doc)
	return strings.TrimRight(w.output.String(), "\n")
}

// Turn is one speaker's contribution. Speaker is empty for narration that
// precedes the first labeled turn.
type Turn struct {
	Speaker string
	Body    string
}

// SplitTurns splits Plato text into turns. Labels inside fenced code blocks
// are not treated as turn boundaries.
func SplitTurns(input string) []Turn {
	var turns []Turn
	var current *Turn
	var body strings.Builder
	inFence := false

	flush := func() {
		if current == nil {
			if strings.TrimSpace(body.String()) != "" {
				turns = append(turns, Turn{Body: body.String()})
			}
		} else {
			current.Body = body.String()
			turns = append(turns, *current)
		}
		body.Reset()
	}

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if !inFence {
			if m := turnPattern.FindStringSubmatchIndex(line); m != nil {
				flush()
				current = &Turn{Speaker: strings.TrimSpace(line[m[2]:m[3]])}
				line = line[m[1]:]
			}
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()
	return turns
}
