// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package macaroni

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/macaroni/internal/spec"
)

func TestParseScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "Link",
			source: "Hello, [world](https://en.wikipedia.org/wiki/World)!",
			want: []string{
				`paragraph [0,52)`,
				`  text "Hello, "`,
				`  link dest="https://en.wikipedia.org/wiki/World"`,
				`    text "world"`,
				`  text "!"`,
			},
		},
		{
			name:   "Emphasis",
			source: "*a* **b**",
			want: []string{
				`paragraph [0,9)`,
				`  emphasis`,
				`    text "a"`,
				`  text " "`,
				`  strong`,
				`    text "b"`,
			},
		},
		{
			name:   "LinkReferenceDefinition",
			source: "[x]: /u \"t\"\n[x]\n",
			want: []string{
				`paragraph [12,15)`,
				`  link dest="/u" title="t"`,
				`    text "x"`,
			},
		},
		{
			name:   "UnmatchedDelimiter",
			source: "*a",
			want: []string{
				`paragraph [0,2)`,
				`  text "*a"`,
			},
		},
		{
			name:   "NUL",
			source: "Hello,\x00World",
			want: []string{
				`paragraph [0,12)`,
				`  text "Hello,\x00World"`,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc, err := Parse([]byte(test.source))
			if err != nil {
				t.Fatal(err)
			}
			got := summarize(doc)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Parse(%q) (-want +got):\n%s", test.source, diff)
			}
		})
	}
}

func TestATXHeadingContentRange(t *testing.T) {
	doc, err := Parse([]byte("# Title\n"))
	if err != nil {
		t.Fatal(err)
	}
	root := doc.Root()
	if got := root.ChildCount(); got != 1 {
		t.Fatalf("root.ChildCount() = %d; want 1", got)
	}
	heading := root.Child(0).Block()
	if got, want := heading.Kind(), ATXHeadingKind; got != want {
		t.Errorf("heading.Kind() = %v; want %v", got, want)
	}
	if got := heading.HeadingLevel(); got != 1 {
		t.Errorf("heading.HeadingLevel() = %d; want 1", got)
	}
	want := Range{
		Start: Position{Line: 0, Character: 2, Offset: 2},
		End:   Position{Line: 0, Character: 7, Offset: 7},
	}
	if diff := cmp.Diff(want, heading.ContentRange()); diff != "" {
		t.Errorf("heading.ContentRange() (-want +got):\n%s", diff)
	}
}

func TestParseLimits(t *testing.T) {
	tests := []struct {
		name   string
		parser *Parser
		source string
		limit  string
	}{
		{
			name:   "DocumentSize",
			parser: &Parser{MaxDocumentSize: 4},
			source: "hello",
			limit:  "document size",
		},
		{
			name:   "BlockNesting",
			parser: &Parser{MaxNestingDepth: 10},
			source: strings.Repeat(">", 20) + " deep\n",
			limit:  "nesting depth",
		},
		{
			name:   "InlineNesting",
			parser: &Parser{MaxNestingDepth: 2},
			source: "***a***\n",
			limit:  "inline nesting depth",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc, err := test.parser.Parse([]byte(test.source))
			if err == nil {
				t.Fatalf("Parse(%q) = %v, <nil>; want error", test.source, doc)
			}
			if !errors.Is(err, ErrResourceLimit) {
				t.Errorf("Parse(%q) error = %v; want %v", test.source, err, ErrResourceLimit)
			}
			if errors.Is(err, ErrInternal) {
				t.Errorf("Parse(%q) error = %v; matches %v", test.source, err, ErrInternal)
			}
			var limitErr *LimitError
			if !errors.As(err, &limitErr) {
				t.Fatalf("Parse(%q) error = %v; want *LimitError", test.source, err)
			}
			if limitErr.Limit != test.limit {
				t.Errorf("limitErr.Limit = %q; want %q", limitErr.Limit, test.limit)
			}
		})
	}
}

func TestUnclosedLinkDestinations(t *testing.T) {
	source := strings.Repeat("[a](", 80000)
	start := time.Now()
	doc, err := Parse([]byte(source))
	elapsed := time.Since(start)
	if err != nil {
		t.Fatal(err)
	}
	if elapsed > 3*time.Second {
		t.Errorf("Parse(%d bytes of unclosed links) took %v; want under 3s", len(source), elapsed)
	}
	for i := 0; i < doc.InlineCount(); i++ {
		if in := doc.Inline(i); in.Kind() == LinkKind {
			t.Errorf("found link at %v", in.Span())
		}
	}
}

func TestDisabledExtensions(t *testing.T) {
	p := &Parser{
		DisableFootnotes:     true,
		DisableCitations:     true,
		DisableStrikethrough: true,
	}
	const source = "~~x~~ @doe [@doe] [^1]\n\n[^1]: Note.\n"
	doc, err := p.Parse([]byte(source))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < doc.InlineCount(); i++ {
		switch k := doc.Inline(i).Kind(); k {
		case StrikethroughKind, CitationKind, FootnoteReferenceKind:
			t.Errorf("found %v node with extension disabled", k)
		}
	}
	for i := 0; i < doc.BlockCount(); i++ {
		if k := doc.Block(i).Kind(); k == FootnoteDefinitionKind {
			t.Errorf("found %v node with extension disabled", k)
		}
	}
}

// commonMarkParser parses without extensions.
var commonMarkParser = &Parser{
	DisableFootnotes:     true,
	DisableCitations:     true,
	DisableStrikethrough: true,
}

func TestCommonMarkExamples(t *testing.T) {
	examples, err := spec.LoadCommonMark()
	if err != nil {
		t.Fatal(err)
	}
	parsers := []struct {
		name   string
		parser *Parser
	}{
		{"Default", &Parser{}},
		{"NoExtensions", commonMarkParser},
	}
	for _, ex := range examples {
		t.Run(fmt.Sprintf("Example%d", ex.Example), func(t *testing.T) {
			t.Logf("section: %s\ninput:\n%s", ex.Section, ex.Markdown)
			for _, p := range parsers {
				doc, err := p.parser.Parse([]byte(ex.Markdown))
				if err != nil {
					t.Errorf("%s: %v", p.name, err)
					continue
				}
				if got, want := doc.Root().Span(), (Span{Start: 0, End: len(ex.Markdown)}); got != want {
					t.Errorf("%s: root.Span() = %v; want %v", p.name, got, want)
				}
				verifyNode(t, doc, doc.Root().AsNode())
			}
		})
	}
}

func TestTextIdempotence(t *testing.T) {
	examples, err := spec.Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, ex := range examples {
		doc, err := Parse([]byte(ex.Markdown))
		if err != nil {
			t.Errorf("Example %d: %v", ex.Example, err)
			continue
		}
		for i := 0; i < doc.InlineCount(); i++ {
			text := doc.Inline(i)
			if text.Kind() != TextKind {
				continue
			}
			literal := doc.Source()[text.Span().Start:text.Span().End]
			want := strings.TrimSpace(text.Text(doc.Source()))
			if want == "" {
				continue
			}
			reparsed, err := Parse(literal)
			if err != nil {
				t.Errorf("Parse(%q): %v", literal, err)
				continue
			}
			if reparsed.BlockCount() != 2 || reparsed.InlineCount() != 1 {
				t.Errorf("Parse(%q) = %d blocks, %d inlines; want 2 blocks, 1 inline", literal, reparsed.BlockCount(), reparsed.InlineCount())
				continue
			}
			got := reparsed.Inline(0)
			if got.Kind() != TextKind || strings.TrimSpace(got.Text(literal)) != want {
				t.Errorf("Parse(%q) = %v %q; want text %q", literal, got.Kind(), got.Text(literal), want)
			}
		}
	}
}

func TestNodeAt(t *testing.T) {
	const source = "# Hi\n\nSome *emphasis* here.\n"
	doc, err := Parse([]byte(source))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		offset int
		want   string
	}{
		{0, "atxHeading"},
		{2, "text"},
		{5, "root"},
		{6, "text"},
		{11, "emphasis"},
		{12, "text"},
		{len(source), "root"},
	}
	for _, test := range tests {
		n := doc.NodeAt(test.offset)
		if got := n.KindName(); got != test.want {
			t.Errorf("doc.NodeAt(%d) = %s %v; want %s", test.offset, got, n.Span(), test.want)
		}
	}
	if n := doc.NodeAt(-1); !n.IsZero() {
		t.Errorf("doc.NodeAt(-1) = %s; want zero", n.KindName())
	}
}

func FuzzParse(f *testing.F) {
	examples, err := spec.Load()
	if err != nil {
		f.Fatal(err)
	}
	for _, ex := range examples {
		f.Add(ex.Markdown)
	}
	commonMarkExamples, err := spec.LoadCommonMark()
	if err != nil {
		f.Fatal(err)
	}
	for _, ex := range commonMarkExamples {
		f.Add(ex.Markdown)
	}
	f.Add("> a\nb\n\n- [x](y)\n  ***z***\n")
	f.Add("😀 *x*\r\ny\rz")

	f.Fuzz(func(t *testing.T, markdown string) {
		doc, err := Parse([]byte(markdown))
		if errors.Is(err, ErrResourceLimit) {
			t.Skip(err)
		}
		if err != nil {
			t.Fatal(err)
		}
		root := doc.Root()
		if got, want := root.Span(), (Span{Start: 0, End: len(markdown)}); got != want {
			t.Errorf("root.Span() = %v; want %v", got, want)
		}
		verifyNode(t, doc, root.AsNode())
	})
}

// verifyNode checks that every node in the subtree rooted at n
// is contained by its parent and that siblings are ordered.
func verifyNode(tb testing.TB, doc *Document, n Node) {
	tb.Helper()

	Walk(n, &WalkOptions{
		Pre: func(c *Cursor) bool {
			curr := c.Node()
			span := curr.Span()
			if !span.IsValid() || span.Start > span.End || span.End > len(doc.Source()) {
				tb.Errorf("%s span %v is invalid", curr.KindName(), span)
				return false
			}
			if rng := curr.Range(); rng.Start.Offset != span.Start || rng.End.Offset != span.End {
				tb.Errorf("%s range %v does not match span %v", curr.KindName(), rng, span)
			}
			if p := c.Parent(); !p.IsZero() {
				if ps := p.Span(); span.Start < ps.Start || span.End > ps.End {
					tb.Errorf("%s span %v exceeds parent %s span %v", curr.KindName(), span, p.KindName(), ps)
				}
				if curr.Parent() != p {
					tb.Errorf("%s Parent() = %s; want %s", curr.KindName(), curr.Parent().KindName(), p.KindName())
				}
			}
			for i := 0; i+1 < curr.ChildCount(); i++ {
				a, b := curr.Child(i).Span(), curr.Child(i+1).Span()
				if a.End > b.Start {
					tb.Errorf("%s children %d %v and %d %v overlap", curr.KindName(), i, a, i+1, b)
				}
			}
			return true
		},
	})
}

// summarize describes the top-level leaf blocks of doc and their inlines.
func summarize(doc *Document) []string {
	var lines []string
	root := doc.Root()
	for i := 0; i < root.ChildCount(); i++ {
		b := root.Child(i).Block()
		lines = append(lines, fmt.Sprintf("%v %v", b.Kind(), b.Span()))
		Walk(b.AsNode(), &WalkOptions{
			Pre: func(c *Cursor) bool {
				in := c.Node().Inline()
				if in == nil {
					return true
				}
				line := strings.Repeat("  ", c.Depth()) + in.Kind().String()
				switch in.Kind() {
				case TextKind:
					line += fmt.Sprintf(" %q", in.Text(doc.Source()))
				case LinkKind:
					line += fmt.Sprintf(" dest=%q", in.LinkDestination())
					if title, ok := in.LinkTitle(); ok {
						line += fmt.Sprintf(" title=%q", title)
					}
				}
				lines = append(lines, line)
				return true
			},
		})
	}
	return lines
}
