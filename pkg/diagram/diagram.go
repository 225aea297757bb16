// Package diagram reads indented ASCII tree diagrams such as the output of
// tree(1) and turns them into ordered (depth, name, directory) lines.
package diagram

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/mattsolo1/grove-foldergen/pkg/tree"
)

var (
	// ErrNoRoot indicates a diagram without a root line.
	ErrNoRoot = errors.New("diagram has no root")

	// ErrSyntax indicates a line that is not part of a tree diagram.
	ErrSyntax = errors.New("not a tree line")

	// ErrInvalidName indicates a name that cannot be a single path segment.
	ErrInvalidName = errors.New("invalid name")

	// ErrDepth indicates a line nested more than one level below its predecessor.
	ErrDepth = errors.New("unexpected nesting")
)

// Line is one entry below the root.
type Line struct {
	Number int    // 1-based line number in the source
	Depth  int    // 0 for direct children of the root
	Name   string // single path segment, NFC-normalized
	Dir    bool
}

// Diagram is a parsed tree diagram.
type Diagram struct {
	Root  string
	Lines []Line
}

// Branch markers. At equal offsets the earlier form wins, so longer forms
// and forms followed by a space come first.
var markers = []string{
	"├── ", "└── ", "|-- ", "`-- ", "+-- ",
	"├─ ", "└─ ",
	"├──", "└──", "|--", "`--", "+--",
	"├─", "└─",
}

// Here is the root of tree(1) run without arguments. It stands for the
// destination itself.
const Here = "."

// Parse reads a diagram. The first non-blank line names the root; a root of
// "." (Here) means the entries go directly into the destination. Every
// following line is either a branch line (├── name, ├─ name, |-- name, ...)
// whose depth is the width of its prefix divided by the width of its marker,
// or a plainly indented name whose depth is its indentation divided by four,
// minus one.
//
// A name ending in "/" is a directory; so is any entry followed by a deeper
// one. A '#' set off from the name by whitespace starts a comment. The
// "N directories, M files" summary printed by tree(1) is ignored.
func Parse(r io.Reader) (*Diagram, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024), 1024*1024)

	d := &Diagram{}
	lineNum := 0
	for sc.Scan() {
		lineNum++
		raw := strings.TrimRight(sc.Text(), "\r\n")
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || isSpacer(line) {
			continue
		}

		if d.Root == "" {
			name := strings.TrimSuffix(stripComment(line), "/")
			name = norm.NFC.String(name)
			if err := validateRoot(name); err != nil {
				return nil, fmt.Errorf("line %d: root: %w", lineNum, err)
			}
			d.Root = name
			continue
		}

		if isTreeSummary(line) {
			continue
		}

		depth, name, ok := parseTreeLine(raw)
		if !ok {
			return nil, fmt.Errorf("line %d: %q: %w", lineNum, raw, ErrSyntax)
		}
		name = stripComment(name)
		dir := strings.HasSuffix(name, "/")
		name = norm.NFC.String(strings.TrimSuffix(name, "/"))
		if err := ValidateName(name); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		prev := -1
		if n := len(d.Lines); n > 0 {
			prev = d.Lines[n-1].Depth
		}
		if depth > prev+1 {
			return nil, fmt.Errorf("line %d: %q at depth %d follows depth %d: %w", lineNum, name, depth, prev, ErrDepth)
		}

		d.Lines = append(d.Lines, Line{Number: lineNum, Depth: depth, Name: name, Dir: dir})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read diagram: %w", err)
	}
	if d.Root == "" {
		return nil, ErrNoRoot
	}

	for i := range d.Lines {
		if !d.Lines[i].Dir && i+1 < len(d.Lines) && d.Lines[i+1].Depth > d.Lines[i].Depth {
			d.Lines[i].Dir = true
		}
	}
	return d, nil
}

// Specs converts the lines into tree construction entries.
func (d *Diagram) Specs() []tree.Spec {
	specs := make([]tree.Spec, 0, len(d.Lines))
	for _, l := range d.Lines {
		specs = append(specs, tree.Spec{Depth: l.Depth, Name: l.Name, Container: l.Dir})
	}
	return specs
}

// Build creates the tree described by the diagram. Errors name the source
// line of the offending entry.
func (d *Diagram) Build(reg *tree.Registry) (*tree.Tree, error) {
	t, err := tree.Build(reg, d.Root, d.Specs())
	if err != nil {
		var be *tree.BuildError
		if errors.As(err, &be) && be.Index < len(d.Lines) {
			return nil, fmt.Errorf("line %d: %w", d.Lines[be.Index].Number, err)
		}
		return nil, err
	}
	return t, nil
}

// validateRoot accepts Here in addition to plain names.
func validateRoot(name string) error {
	if name == Here {
		return nil
	}
	return ValidateName(name)
}

// ValidateName checks that name is a single path segment: not empty, not
// "." or "..", without separators and not absolute.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case filepath.IsAbs(name):
		return fmt.Errorf("%w: %q is absolute", ErrInvalidName, name)
	}
	return nil
}

func parseTreeLine(line string) (int, string, bool) {
	idx := -1
	used := ""
	for _, m := range markers {
		if i := strings.Index(line, m); i != -1 && (idx == -1 || i < idx) {
			idx = i
			used = m
		}
	}
	if idx == -1 {
		return parseIndented(line)
	}
	// "├── " spans four columns per level, "├─ " three.
	unit := utf8.RuneCountInString(strings.TrimRight(used, " ")) + 1
	return countDepth(line[:idx], unit), strings.TrimSpace(line[idx+len(used):]), true
}

// parseIndented handles diagrams without branch markers. Indentation is
// counted in columns, a tab being four.
func parseIndented(line string) (int, string, bool) {
	cols := 0
	for _, r := range line {
		switch r {
		case ' ':
			cols++
		case '\t':
			cols += 4
		default:
			name := strings.TrimSpace(line)
			if cols < 4 || strings.ContainsAny(name, "│├└") {
				return 0, "", false
			}
			return cols/4 - 1, name, true
		}
	}
	return 0, "", false
}

// countDepth blanks out the drawing characters of a prefix and counts groups
// of unit columns. A tab is one group.
func countDepth(prefix string, unit int) int {
	s := prefix
	for _, r := range []string{"│", "└", "├", "─", "|"} {
		s = strings.ReplaceAll(s, r, " ")
	}
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", unit))
	return strings.Count(s, " ") / unit
}

// stripComment removes a trailing comment. A '#' opens a comment only when
// it follows whitespace and is either followed by whitespace or the end of
// the line, or set off by at least two blanks, so "notes #1.txt" keeps its
// name while "main.go # entry" and "main.go  #entry" do not.
func stripComment(s string) string {
	for i := 1; i < len(s); i++ {
		if s[i] != '#' || !isBlank(s[i-1]) {
			continue
		}
		closed := i+1 == len(s) || isBlank(s[i+1])
		padded := s[i-1] == '\t' || (i >= 2 && isBlank(s[i-2]))
		if closed || padded {
			return strings.TrimSpace(s[:i])
		}
	}
	return strings.TrimSpace(s)
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

// isSpacer reports lines made only of vertical connectors, as printed
// between siblings by some renderers.
func isSpacer(line string) bool {
	return strings.Trim(line, "│| \t") == ""
}

func isTreeSummary(line string) bool {
	s := strings.ToLower(line)
	return strings.Contains(s, "director") && strings.Contains(s, "file") &&
		strings.IndexAny(s, "0123456789") == 0
}
