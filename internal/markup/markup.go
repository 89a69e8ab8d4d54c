// Package markup reads and rewrites the hashtag and checkbox markup embedded
// in note text. Rendering is a presentation concern; these helpers only give
// the engine and CLI a structured view of the substrate.
package markup

import (
	"errors"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(goldmark.WithExtensions(extension.TaskList))

var hashtagRe = regexp.MustCompile(`#[\p{L}\p{N}_-]+`)

// Hashtags returns the hashtags in the text's prose, deduplicated, in order
// of first appearance, without the leading '#'. Tags inside code spans or
// code blocks are not tags.
func Hashtags(src string) []string {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	seen := map[string]bool{}
	var tags []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.CodeSpan); ok {
			return ast.WalkSkipChildren, nil
		}
		t, ok := n.(*ast.Text)
		if !ok {
			return ast.WalkContinue, nil
		}
		for _, m := range hashtagRe.FindAllString(string(t.Segment.Value(source)), -1) {
			tag := strings.TrimPrefix(m, "#")
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
		return ast.WalkContinue, nil
	})
	return tags
}

// Checkboxes counts the task-list checkboxes in the text.
func Checkboxes(src string) (done, total int) {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if cb, ok := n.(*east.TaskCheckBox); ok {
			total++
			if cb.IsChecked {
				done++
			}
		}
		return ast.WalkContinue, nil
	})
	return done, total
}

var checkboxLineRe = regexp.MustCompile(`^(\s*(?:[-*+]|\d+[.)])\s+)\[( |x|X)\]`)

// ToggleCheckbox flips the state of the index-th checkbox (0-based, in source
// order) and returns the rewritten text. The rest of the text is untouched.
func ToggleCheckbox(src string, index int) (string, error) {
	if index < 0 {
		return "", errors.New("checkbox index out of range")
	}
	lines := strings.Split(src, "\n")
	seen := 0
	for i, line := range lines {
		m := checkboxLineRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		if seen == index {
			// m[4],m[5] bound the state character inside the brackets.
			state := line[m[4]:m[5]]
			repl := "x"
			if state == "x" || state == "X" {
				repl = " "
			}
			lines[i] = line[:m[4]] + repl + line[m[5]:]
			return strings.Join(lines, "\n"), nil
		}
		seen++
	}
	return "", errors.New("checkbox index out of range")
}
