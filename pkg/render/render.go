// Package render presents trees as text: an indented structure view, a
// detailed view carrying the derived attributes of every element, and a
// one-line summary.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattsolo1/grove-core/tui/theme"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mattsolo1/grove-foldergen/pkg/tree"
)

// ErrUnknownFormat is returned by ParseFormat for unrecognized names.
var ErrUnknownFormat = errors.New("unknown format")

// Format selects the view produced by a Printer.
type Format string

const (
	FormatStructure Format = "structure"
	FormatDetailed  Format = "detailed"
	FormatSummary   Format = "summary"
)

// Formats lists the accepted formats in display order.
var Formats = []Format{FormatStructure, FormatDetailed, FormatSummary}

// ParseFormat maps a user-supplied name to a Format. "details" is accepted
// as an alias of "detailed".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatStructure, FormatDetailed, FormatSummary:
		return f, nil
	case "details":
		return FormatDetailed, nil
	case "":
		return FormatStructure, nil
	}
	return "", fmt.Errorf("%w %q (want one of %v)", ErrUnknownFormat, s, Formats)
}

const (
	branch = "├── "
	last   = "└── "
	pipe   = "│   "
	blank  = "    "
)

// Printer renders elements. The zero value prints the uncolored structure view.
type Printer struct {
	Format Format
	Color  bool
}

// Present implements tree.Presenter.
func (p Printer) Present(e tree.Element) string {
	if e == nil {
		return ""
	}
	switch p.Format {
	case FormatDetailed:
		var b strings.Builder
		p.detailed(&b, e, "", "", true)
		return b.String()
	case FormatSummary:
		return p.summary(e) + "\n"
	default:
		var b strings.Builder
		p.structure(&b, e, "", "", true)
		return b.String()
	}
}

// Title returns the heading printed above a view of the element.
func (p Printer) Title(e tree.Element) string {
	f := p.Format
	if f == "" {
		f = FormatStructure
	}
	title := fmt.Sprintf("%s: %s", cases.Title(language.English).String(string(f)), e.Name())
	if p.Color {
		return theme.DefaultTheme.Header.Render(title)
	}
	return title
}

// Levels lists the elements of every level of t, one level per line.
func (p Printer) Levels(t *tree.Tree) string {
	var b strings.Builder
	for i, row := range t.Levels() {
		names := make([]string, 0, len(row))
		for _, e := range row {
			names = append(names, p.name(e))
		}
		fmt.Fprintf(&b, "%s %s\n", p.detail(fmt.Sprintf("%d:", i)), strings.Join(names, ", "))
	}
	return b.String()
}

func (p Printer) structure(b *strings.Builder, e tree.Element, prefix, connector string, isLast bool) {
	b.WriteString(prefix)
	b.WriteString(connector)
	b.WriteString(p.label(e))
	b.WriteString("\n")

	c, ok := e.(*tree.Container)
	if !ok {
		return
	}
	childPrefix := prefix + indent(connector, isLast)
	children := c.Children()
	for i, child := range children {
		lastChild := i == len(children)-1
		p.structure(b, child, childPrefix, connectorFor(lastChild), lastChild)
	}
}

func (p Printer) detailed(b *strings.Builder, e tree.Element, prefix, connector string, isLast bool) {
	b.WriteString(prefix)
	b.WriteString(connector)
	b.WriteString(p.label(e))
	b.WriteString("\n")

	c, isContainer := e.(*tree.Container)
	detailPrefix := prefix + indent(connector, isLast)
	if isContainer && !c.IsEmpty() {
		detailPrefix += "│ "
	} else {
		detailPrefix += "  "
	}

	lines := []string{
		fmt.Sprintf("~ ID: %d", e.ID()),
		fmt.Sprintf("~ Path: %s", e.Path()),
		fmt.Sprintf("~ Level: %d", e.Level()),
		fmt.Sprintf("~ Position: %d", e.Position()),
	}
	if isContainer {
		lines = append(lines, fmt.Sprintf("~ Children: %d", c.Count(false)))
	}
	for _, l := range lines {
		b.WriteString(detailPrefix)
		b.WriteString(p.detail(l))
		b.WriteString("\n")
	}

	if !isContainer {
		return
	}
	childPrefix := prefix + indent(connector, isLast)
	children := c.Children()
	for i, child := range children {
		lastChild := i == len(children)-1
		p.detailed(b, child, childPrefix, connectorFor(lastChild), lastChild)
	}
}

func (p Printer) summary(e tree.Element) string {
	c, ok := e.(*tree.Container)
	if !ok {
		return fmt.Sprintf("%s: file at %s (level %d, position %d)", p.name(e), e.Path(), e.Level(), e.Position())
	}
	dirs, files := 0, 0
	var count func(c *tree.Container)
	count = func(c *tree.Container) {
		for _, child := range c.Children() {
			if sub, ok := child.(*tree.Container); ok {
				dirs++
				count(sub)
				continue
			}
			files++
		}
	}
	count(c)
	return fmt.Sprintf("%s: %s, %s, depth %d", p.name(e), plural(dirs, "directory", "directories"),
		plural(files, "file", "files"), c.MaxDepth())
}

// label is "N. name" with a trailing slash on containers. Roots have no
// number.
func (p Printer) label(e tree.Element) string {
	if e.IsRoot() || e.Position() == tree.NotFound {
		return p.name(e)
	}
	return fmt.Sprintf("%d. %s", e.Position(), p.name(e))
}

func (p Printer) name(e tree.Element) string {
	if !e.IsContainer() {
		return e.Name()
	}
	n := e.Name() + "/"
	if p.Color {
		return containerStyle.Render(n)
	}
	return n
}

func (p Printer) detail(s string) string {
	if p.Color {
		return theme.DefaultTheme.Muted.Render(s)
	}
	return s
}

var containerStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.DefaultTheme.Colors.Cyan)

func connectorFor(isLast bool) string {
	if isLast {
		return last
	}
	return branch
}

// indent returns the prefix contribution of an element for its children.
// The top element of a view has no connector and contributes nothing.
func indent(connector string, isLast bool) string {
	switch {
	case connector == "":
		return ""
	case isLast:
		return blank
	default:
		return pipe
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
