package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// walker accumulates inline content per block and wraps it when the block
// closes, so soft line breaks reflow at the current width.
type walker struct {
	source  []byte
	width   int
	palette Palette
	styler  *lipgloss.Renderer

	output strings.Builder
	inline strings.Builder

	prefix        string
	prefixWidth   int
	prefixes      []string
	pendingBullet string

	bold, italic, strike int
	lists                []listState
	blankPending         bool
}

type listState struct {
	ordered bool
	counter int
	tight   bool
}

func (w *walker) run(doc ast.Node) {
	_ = ast.Walk(doc, w.visit)
}

func (w *walker) style() lipgloss.Style {
	return w.styler.NewStyle()
}

func (w *walker) contentWidth() int {
	width := w.width - w.prefixWidth
	if width < 10 {
		width = 10
	}
	return width
}

func (w *walker) pushPrefix(p string) {
	w.prefixes = append(w.prefixes, p)
	w.prefix += p
	w.prefixWidth += ansi.StringWidth(p)
}

func (w *walker) popPrefix() {
	if len(w.prefixes) == 0 {
		return
	}
	top := w.prefixes[len(w.prefixes)-1]
	w.prefixes = w.prefixes[:len(w.prefixes)-1]
	w.prefix = w.prefix[:len(w.prefix)-len(top)]
	w.prefixWidth -= ansi.StringWidth(top)
}

func (w *walker) tight() bool {
	return len(w.lists) > 0 && w.lists[len(w.lists)-1].tight
}

// emit writes a finished block, separating it from the previous one.
func (w *walker) emit(block string) {
	if block == "" {
		return
	}
	if w.blankPending && w.output.Len() > 0 {
		w.output.WriteString("\n")
	}
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if i == 0 && w.pendingBullet != "" {
			w.output.WriteString(w.pendingBullet)
			w.pendingBullet = ""
		} else {
			w.output.WriteString(w.prefix)
		}
		w.output.WriteString(line)
		w.output.WriteString("\n")
	}
	w.blankPending = !w.tight()
}

func (w *walker) flushInline() string {
	content := strings.TrimRight(w.inline.String(), " ")
	w.inline.Reset()
	if content == "" {
		return ""
	}
	return wordwrap.String(content, w.contentWidth())
}

func (w *walker) styledText(s string) string {
	st := w.style().Foreground(w.palette.Text)
	if w.bold > 0 {
		st = st.Bold(true)
	}
	if w.italic > 0 {
		st = st.Italic(true)
	}
	if w.strike > 0 {
		st = st.Strikethrough(true)
	}
	return st.Render(s)
}

func (w *walker) faint(s string) string {
	return w.style().Foreground(w.palette.Faint).Render(s)
}

func (w *walker) lines(node ast.Node) string {
	var b strings.Builder
	segments := node.Lines()
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		b.Write(seg.Value(w.source))
	}
	return b.String()
}

func (w *walker) visit(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	case *ast.Document:

	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			w.inline.Reset()
		} else {
			w.emit(w.flushInline())
		}

	case *ast.Heading:
		if entering {
			w.inline.Reset()
			return ast.WalkContinue, nil
		}
		content := ansi.Strip(w.inline.String())
		w.inline.Reset()
		st := w.style().Bold(true).Foreground(w.palette.Text)
		if n.Level <= 2 {
			st = st.Foreground(w.palette.Accent)
		}
		w.emit(st.Render(wordwrap.String(content, w.contentWidth())))

	case *ast.FencedCodeBlock:
		if entering {
			w.emit(w.highlight(w.lines(n), string(n.Language(w.source))))
			return ast.WalkSkipChildren, nil
		}

	case *ast.CodeBlock:
		if entering {
			w.emit(w.faint(strings.TrimRight(w.lines(n), "\n")))
			return ast.WalkSkipChildren, nil
		}

	case *ast.Blockquote:
		if entering {
			w.pushPrefix(w.style().Foreground(w.palette.Border).Render("│") + " ")
		} else {
			w.popPrefix()
		}

	case *ast.List:
		if entering {
			start := 0
			if n.IsOrdered() {
				start = n.Start
			}
			w.lists = append(w.lists, listState{ordered: n.IsOrdered(), counter: start, tight: n.IsTight})
		} else {
			w.lists = w.lists[:len(w.lists)-1]
			w.blankPending = !w.tight()
		}

	case *ast.ListItem:
		if entering {
			w.enterListItem()
		} else {
			w.popPrefix()
		}

	case *ast.ThematicBreak:
		if entering {
			w.emit(w.style().Foreground(w.palette.Border).Render(strings.Repeat("─", w.contentWidth())))
		}

	case *ast.HTMLBlock:
		if entering {
			if raw := strings.TrimSpace(w.lines(n)); raw != "" {
				w.emit(w.faint(raw))
			}
			return ast.WalkSkipChildren, nil
		}

	case *ast.Text:
		if entering {
			w.inline.WriteString(w.styledText(string(n.Segment.Value(w.source))))
			if n.HardLineBreak() {
				w.inline.WriteString("\n")
			} else if n.SoftLineBreak() {
				w.inline.WriteString(" ")
			}
		}

	case *ast.String:
		if entering {
			w.inline.WriteString(w.styledText(string(n.Value)))
		}

	case *ast.Emphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if n.Level >= 2 {
			w.bold += delta
		} else {
			w.italic += delta
		}

	case *ast.CodeSpan:
		if entering {
			var code strings.Builder
			for child := n.FirstChild(); child != nil; child = child.NextSibling() {
				switch c := child.(type) {
				case *ast.Text:
					code.Write(c.Segment.Value(w.source))
				case *ast.String:
					code.Write(c.Value)
				}
			}
			w.inline.WriteString(w.faint(code.String()))
			return ast.WalkSkipChildren, nil
		}

	case *ast.Link:
		if !entering && len(n.Destination) > 0 {
			w.inline.WriteString(" " + w.faint("("+string(n.Destination)+")"))
		}

	case *ast.AutoLink:
		if entering {
			w.inline.WriteString(w.style().Foreground(w.palette.Accent).Underline(true).Render(string(n.URL(w.source))))
			return ast.WalkSkipChildren, nil
		}

	case *ast.RawHTML:
		if entering {
			var raw strings.Builder
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				raw.Write(seg.Value(w.source))
			}
			w.inline.WriteString(w.faint(raw.String()))
			return ast.WalkSkipChildren, nil
		}

	case *extast.Strikethrough:
		if entering {
			w.strike++
		} else {
			w.strike--
		}

	case *extast.TaskCheckBox:
		if entering {
			mark := "[ ] "
			if n.IsChecked {
				mark = "[x] "
			}
			w.inline.WriteString(w.styledText(mark))
		}
	}
	return ast.WalkContinue, nil
}

func (w *walker) enterListItem() {
	if len(w.lists) == 0 {
		w.pushPrefix("")
		return
	}
	top := &w.lists[len(w.lists)-1]
	bullet := "• "
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	}
	w.pendingBullet = w.prefix + w.style().Foreground(w.palette.Accent).Render(bullet)
	w.pushPrefix(strings.Repeat(" ", ansi.StringWidth(bullet)))
}

// highlight syntax-colors fenced code with chroma, falling back to faint
// text for unknown languages.
func (w *walker) highlight(code, language string) string {
	code = strings.TrimRight(code, "\n")
	if language == "" {
		return w.faint(code)
	}
	var b strings.Builder
	if err := quick.Highlight(&b, code, language, "terminal256", "monokai"); err != nil {
		return w.faint(code)
	}
	return strings.TrimRight(b.String(), "\n")
}
