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

// Package macaroni parses Markdown into a syntax tree
// where every node carries its exact source position.
//
// The parser follows [CommonMark] for block and inline structure
// and adds Pandoc-style footnotes and citations
// along with GFM-style strikethrough.
// Positions are reported as zero-based lines
// with columns measured in UTF-16 code units,
// as used by the Language Server Protocol.
//
// [CommonMark]: https://commonmark.org/
package macaroni

import (
	"fmt"
)

// tabStopSize is the multiple of columns that a [tab] advances to.
//
// [tab]: https://spec.commonmark.org/0.30/#tabs
const tabStopSize = 4

// Default limits used by a zero [Parser].
const (
	DefaultMaxNestingDepth = 64
	DefaultMaxDocumentSize = 8 << 20
)

// A Parser converts Markdown source into a [Document].
// The zero value is a parser with default limits
// and all extensions enabled.
// A Parser may be used concurrently
// as long as its fields are not modified.
type Parser struct {
	// MaxNestingDepth is the maximum number of nested container blocks
	// and the maximum nesting of inline nodes.
	// If zero, DefaultMaxNestingDepth is used.
	MaxNestingDepth int
	// MaxDocumentSize is the maximum size of a source in bytes.
	// If zero, DefaultMaxDocumentSize is used.
	// A negative value disables the check.
	MaxDocumentSize int

	// CitationMatcher, if not nil, restricts which citation keys
	// are recognized as citations.
	CitationMatcher CitationMatcher

	DisableFootnotes     bool
	DisableCitations     bool
	DisableStrikethrough bool
}

func (p *Parser) maxNestingDepth() int {
	if p.MaxNestingDepth <= 0 {
		return DefaultMaxNestingDepth
	}
	return p.MaxNestingDepth
}

func (p *Parser) maxDocumentSize() int {
	if p.MaxDocumentSize == 0 {
		return DefaultMaxDocumentSize
	}
	return p.MaxDocumentSize
}

func (p *Parser) footnotesEnabled() bool     { return !p.DisableFootnotes }
func (p *Parser) citationsEnabled() bool     { return !p.DisableCitations }
func (p *Parser) strikethroughEnabled() bool { return !p.DisableStrikethrough }

// Parse parses source with the default [Parser].
func Parse(source []byte) (*Document, error) {
	return new(Parser).Parse(source)
}

// Parse converts a Markdown source into a [Document].
// Malformed Markdown is never an error:
// ambiguous constructs degrade to literal text.
// Parse returns an error matching [ErrResourceLimit]
// if the source exceeds the parser's limits
// or an error matching [ErrInternal] if the parser detected a bug in itself.
//
// The returned document references source,
// so the caller must not modify source afterward.
func (p *Parser) Parse(source []byte) (doc *Document, err error) {
	if max := p.maxDocumentSize(); max >= 0 && len(source) > max {
		return nil, fmt.Errorf("parse markdown: %w", &LimitError{
			Limit:  "document size",
			Max:    max,
			Offset: max,
		})
	}
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		doc = nil
		switch v := v.(type) {
		case *LimitError:
			err = fmt.Errorf("parse markdown: %w", v)
		case *InternalError:
			err = fmt.Errorf("parse markdown: %w", v)
		case error:
			err = fmt.Errorf("parse markdown: %w", internalError("panic", v))
		default:
			err = fmt.Errorf("parse markdown: %w", internalError(fmt.Sprint(v), nil))
		}
	}()

	bp := p.parseBlocks(source)
	return assemble(p, bp), nil
}

// parseBlocks runs the block structure phase over the whole source.
//
// This corresponds to [Phase 1]
// in the CommonMark recommended parsing strategy.
//
// [Phase 1]: https://spec.commonmark.org/0.30/#phase-1-block-structure
func (p *Parser) parseBlocks(source []byte) *blockParser {
	bp := &blockParser{
		opts:      p,
		source:    source,
		lines:     NewLineIndex(source),
		refs:      make(ReferenceMap),
		footnotes: make(map[string]int),
	}
	bp.blocks = append(bp.blocks, Block{
		kind:     RootKind,
		span:     Span{Start: 0, End: len(source)},
		self:     Node{typ: nodeTypeBlock},
		open:     true,
		content:  NullSpan(),
		infoSpan: NullSpan(),
	})
	bp.open = append(bp.open, 0)

	// A trailing line ending does not start another line of content.
	n := bp.lines.LineCount()
	if n > 1 && bp.lines.LineSpan(n-1).Start == len(source) {
		n--
	}
	for lineno := 0; lineno < n; lineno++ {
		bp.incorporateLine(lineno)
	}
	for len(bp.open) > 0 {
		bp.finalize(n - 1)
	}
	root := &bp.blocks[0]
	root.span = Span{Start: 0, End: len(source)}
	root.endLine = bp.lines.LineCount() - 1
	return bp
}

// incorporateLine analyzes a single line of input,
// closing, continuing, or opening blocks as needed.
func (p *blockParser) incorporateLine(lineno int) {
	span := p.lines.LineSpan(lineno)
	p.lineno = lineno
	p.lineStart = span.Start
	p.line = p.source[span.Start:span.End]
	p.offset = 0
	p.column = 0
	p.blank = false
	p.partiallyConsumedTab = false

	// Step 1: iterate through open blocks,
	// descending through last children down to the last open block.
	matchedDepth := 0
	for depth := 1; depth < len(p.open); depth++ {
		id := p.open[depth]
		p.findNextNonspace()
		result := blockRules[p.kind(id)].continuation(p, id)
		if result == matchedEntireLine {
			// Closing code fence: nothing else on the line.
			return
		}
		if result == noMatch {
			break
		}
		matchedDepth = depth
	}
	p.allClosed = matchedDepth == len(p.open)-1
	p.lastMatched = matchedDepth
	container := p.open[matchedDepth]

	// Step 2: look for new block starts.
	matchedLeaf := p.kind(container) != ParagraphKind && blockRules[p.kind(container)].acceptsLines
	for !matchedLeaf {
		p.findNextNonspace()
		if !p.indented && !maybeSpecial(peek(p.line, p.nextNonspace)) {
			p.advanceNextNonspace()
			break
		}
		found := false
		for _, start := range blockStarts {
			result := start(p, container)
			if result == noMatch {
				continue
			}
			found = true
			container = p.tip()
			matchedLeaf = result == matchedEntireLine
			break
		}
		if !found {
			p.advanceNextNonspace()
			break
		}
	}

	// Step 3: add the line's remaining text.
	if p.maybeLazy() {
		// Lazy paragraph continuation.
		p.addLine()
		return
	}
	p.closeUnmatchedBlocks()
	container = p.tip()
	switch b := &p.blocks[container]; {
	case blockRules[b.kind].acceptsLines:
		p.addLine()
		if b.kind == HTMLBlockKind && b.htmlType >= 1 && b.htmlType <= 5 &&
			htmlBlockConditions[b.htmlType-1].endCondition(p.line[p.offset:]) {
			p.finalize(lineno)
		}
	case p.offset < len(p.line) && !p.blank:
		p.findNextNonspace()
		p.addChild(ParagraphKind, p.nextNonspace)
		p.advanceNextNonspace()
		p.addLine()
	}
}
