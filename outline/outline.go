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

// Package outline derives editor navigation data from a parsed document:
// a hierarchy of heading sections and the line ranges that can be folded.
package outline

import (
	"sort"
	"strings"

	"zombiezen.com/go/macaroni"
)

// Symbol kinds.
const (
	HeadingSymbol  = "heading"
	FootnoteSymbol = "footnote"
)

// A Symbol is a named region of a document.
type Symbol struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Level int    `json:"level,omitempty"`
	// Range covers the whole section:
	// a heading's range extends to the end of the last block before
	// the next heading of the same or a higher level.
	Range macaroni.Range `json:"range"`
	// SelectionRange covers the heading's text.
	SelectionRange macaroni.Range `json:"selectionRange"`
	Children       []*Symbol      `json:"children,omitempty"`
}

// FoldingRange is a range of lines that an editor can collapse.
// Lines are zero-based and inclusive.
type FoldingRange struct {
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Kind      string `json:"kind,omitempty"`
}

// RegionFolding is the [FoldingRange] kind of heading sections.
const RegionFolding = "region"

// Outline is the navigation data of a document.
type Outline struct {
	Symbols       []*Symbol      `json:"symbols"`
	FoldingRanges []FoldingRange `json:"foldingRanges"`
}

// New computes the outline of doc.
func New(doc *macaroni.Document) *Outline {
	return &Outline{
		Symbols:       Symbols(doc),
		FoldingRanges: FoldingRanges(doc),
	}
}

// Symbols returns the heading hierarchy of doc.
// Only headings and footnote definitions at the top level of the document
// are included. Footnote definitions are placed in the enclosing section.
func Symbols(doc *macaroni.Document) []*Symbol {
	root := doc.Root()
	result := []*Symbol{}
	var stack []*Symbol
	lastEnd := root.Span().Start
	closeSections := func(level int) {
		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			top := stack[len(stack)-1]
			top.Range.End = mustPosition(doc, lastEnd)
			stack = stack[:len(stack)-1]
		}
	}
	add := func(sym *Symbol) {
		if len(stack) == 0 {
			result = append(result, sym)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, sym)
		}
	}

	for i := 0; i < root.ChildCount(); i++ {
		b := root.Child(i).Block()
		switch b.Kind() {
		case macaroni.ATXHeadingKind, macaroni.SetextHeadingKind:
			closeSections(b.HeadingLevel())
			sym := &Symbol{
				Name:           headingText(doc.Source(), b),
				Kind:           HeadingSymbol,
				Level:          b.HeadingLevel(),
				Range:          b.Range(),
				SelectionRange: b.Range(),
			}
			if b.ContentSpan().IsValid() {
				sym.SelectionRange = b.ContentRange()
			}
			add(sym)
			stack = append(stack, sym)
		case macaroni.FootnoteDefinitionKind:
			add(&Symbol{
				Name:           "[^" + b.FootnoteLabel() + "]",
				Kind:           FootnoteSymbol,
				Range:          b.Range(),
				SelectionRange: b.Range(),
			})
		}
		lastEnd = b.Span().End
	}
	closeSections(0)
	return result
}

// headingText returns the plain text of a heading's inline content.
func headingText(source []byte, b *macaroni.Block) string {
	sb := new(strings.Builder)
	macaroni.Walk(b.AsNode(), &macaroni.WalkOptions{
		Pre: func(c *macaroni.Cursor) bool {
			in := c.Node().Inline()
			if in == nil {
				return true
			}
			switch in.Kind() {
			case macaroni.TextKind, macaroni.CodeSpanKind:
				sb.WriteString(in.Text(source))
			case macaroni.SoftLineBreakKind, macaroni.HardLineBreakKind:
				sb.WriteString(" ")
			case macaroni.RawHTMLKind, macaroni.FootnoteReferenceKind, macaroni.CitationKind:
				sb.Write(source[in.Span().Start:in.Span().End])
			}
			return true
		},
	})
	return strings.TrimSpace(sb.String())
}

// FoldingRanges returns the foldable regions of doc
// ordered by start line, with enclosing ranges first.
// Single-line blocks are not foldable.
func FoldingRanges(doc *macaroni.Document) []FoldingRange {
	ranges := []FoldingRange{}
	var addSections func(symbols []*Symbol)
	addSections = func(symbols []*Symbol) {
		for _, sym := range symbols {
			if sym.Kind == HeadingSymbol && sym.Range.End.Line > sym.Range.Start.Line {
				ranges = append(ranges, FoldingRange{
					StartLine: sym.Range.Start.Line,
					EndLine:   sym.Range.End.Line,
					Kind:      RegionFolding,
				})
			}
			addSections(sym.Children)
		}
	}
	addSections(Symbols(doc))

	macaroni.Walk(doc.Root().AsNode(), &macaroni.WalkOptions{
		BlocksOnly: true,
		Pre: func(c *macaroni.Cursor) bool {
			b := c.Node().Block()
			switch b.Kind() {
			case macaroni.BlockQuoteKind,
				macaroni.ListKind,
				macaroni.ListItemKind,
				macaroni.FencedCodeBlockKind,
				macaroni.IndentedCodeBlockKind,
				macaroni.HTMLBlockKind,
				macaroni.FootnoteDefinitionKind,
				macaroni.ParagraphKind:
				rng := b.Range()
				if rng.End.Line > rng.Start.Line {
					ranges = append(ranges, FoldingRange{
						StartLine: rng.Start.Line,
						EndLine:   rng.End.Line,
					})
				}
			}
			return b.Kind().IsContainer()
		},
	})

	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].StartLine != ranges[j].StartLine {
			return ranges[i].StartLine < ranges[j].StartLine
		}
		return ranges[i].EndLine > ranges[j].EndLine
	})
	return ranges
}

func mustPosition(doc *macaroni.Document, offset int) macaroni.Position {
	pos, err := doc.Lines().Resolve(offset)
	if err != nil {
		// Block spans always lie within the source.
		panic(err)
	}
	return pos
}
