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
	"fmt"
	"strings"
)

// A Block is a structural element in a Markdown document.
// Blocks are owned by a [Document] and are immutable.
type Block struct {
	kind     BlockKind
	span     Span
	rng      Range
	self     Node
	parent   Node
	children []Node

	// Parse state.
	open      bool
	startLine int
	endLine   int

	lines      []Span
	lineRanges []Range

	content      Span
	contentRange Range

	level    int
	list     listData
	fence    fenceData
	htmlType int
	info     string
	infoSpan Span
	label    string
}

// Kind returns the type of block node
// or zero if the node is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// Span returns the byte offsets of the block in the document's source
// or an invalid span if the node is nil.
func (b *Block) Span() Span {
	if b == nil {
		return NullSpan()
	}
	return b.span
}

// Range returns the position of the block in the document's source.
func (b *Block) Range() Range {
	if b == nil {
		return Range{}
	}
	return b.rng
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (b *Block) ChildCount() int {
	if b == nil {
		return 0
	}
	return len(b.children)
}

// Child returns the i'th child of the node.
// Leaf blocks that contain inline content
// have [Inline] children.
func (b *Block) Child(i int) Node {
	return b.children[i]
}

// Parent returns the block's parent
// or the zero Node if the block is the document root.
func (b *Block) Parent() Node {
	if b == nil {
		return Node{}
	}
	return b.parent
}

// AsNode converts the block node to a [Node] pointer.
func (b *Block) AsNode() Node {
	if b == nil {
		return Node{}
	}
	return b.self
}

// HeadingLevel returns the 1-based level for an [ATXHeadingKind] or [SetextHeadingKind],
// or zero otherwise.
func (b *Block) HeadingLevel() int {
	switch b.Kind() {
	case ATXHeadingKind, SetextHeadingKind:
		return b.level
	default:
		return 0
	}
}

// ContentSpan returns the span of a heading's text,
// excluding markers and surrounding whitespace.
// For other blocks, ContentSpan returns an invalid span.
func (b *Block) ContentSpan() Span {
	switch b.Kind() {
	case ATXHeadingKind, SetextHeadingKind:
		return b.content
	default:
		return NullSpan()
	}
}

// ContentRange returns the position of [*Block.ContentSpan].
func (b *Block) ContentRange() Range {
	switch b.Kind() {
	case ATXHeadingKind, SetextHeadingKind:
		return b.contentRange
	default:
		return Range{}
	}
}

// LineCount returns the number of source lines held by a leaf block.
// Paragraphs, code blocks, and HTML blocks hold lines;
// other blocks report zero.
func (b *Block) LineCount() int {
	if b == nil {
		return 0
	}
	return len(b.lines)
}

// LineSpan returns the i'th line of a leaf block,
// excluding any container prefixes and the line ending.
func (b *Block) LineSpan(i int) Span {
	return b.lines[i]
}

// LineRange returns the position of [*Block.LineSpan].
func (b *Block) LineRange(i int) Range {
	return b.lineRanges[i]
}

// Literal returns the content of a code block or HTML block
// as its lines joined with newlines.
func (b *Block) Literal(source []byte) string {
	switch b.Kind() {
	case FencedCodeBlockKind, IndentedCodeBlockKind, HTMLBlockKind:
	default:
		return ""
	}
	sb := new(strings.Builder)
	for _, line := range b.lines {
		sb.Write(source[line.Start:line.End])
		sb.WriteByte('\n')
	}
	return sb.String()
}

// IsOrdered reports whether the block is an ordered [ListKind] or [ListItemKind].
func (b *Block) IsOrdered() bool {
	switch b.Kind() {
	case ListKind, ListItemKind:
		return b.list.ordered
	default:
		return false
	}
}

// ListStart returns the start number of an ordered list
// or the number of an ordered list item.
func (b *Block) ListStart() int {
	if !b.IsOrdered() {
		return 0
	}
	return b.list.start
}

// IsTight reports whether a [ListKind] is [tight].
//
// [tight]: https://spec.commonmark.org/0.30/#tight
func (b *Block) IsTight() bool {
	return b.Kind() == ListKind && b.list.tight
}

// ListMarker returns the bullet character of a bullet list
// or the delimiter ('.' or ')') of an ordered list.
func (b *Block) ListMarker() byte {
	switch b.Kind() {
	case ListKind, ListItemKind:
		if b.list.ordered {
			return b.list.delimiter
		}
		return b.list.bullet
	default:
		return 0
	}
}

// InfoString returns the decoded [info string] of a fenced code block.
//
// [info string]: https://spec.commonmark.org/0.30/#info-string
func (b *Block) InfoString() string {
	if b.Kind() != FencedCodeBlockKind {
		return ""
	}
	return b.info
}

// InfoSpan returns the source span of a fenced code block's info string.
// The span is empty if the fence has no info string.
func (b *Block) InfoSpan() Span {
	if b.Kind() != FencedCodeBlockKind {
		return NullSpan()
	}
	return b.infoSpan
}

// FootnoteLabel returns the label of a [FootnoteDefinitionKind]
// as written in the source.
func (b *Block) FootnoteLabel() string {
	if b.Kind() != FootnoteDefinitionKind {
		return ""
	}
	return b.label
}

func (b *Block) lastChild() int {
	if len(b.children) == 0 {
		return -1
	}
	return int(b.children[len(b.children)-1].id)
}

// BlockKind is an enumeration of values returned by [*Block.Kind].
type BlockKind uint16

const (
	// RootKind is the kind of the single block that holds the whole document.
	RootKind BlockKind = 1 + iota
	ParagraphKind
	ThematicBreakKind
	ATXHeadingKind
	SetextHeadingKind
	IndentedCodeBlockKind
	FencedCodeBlockKind
	HTMLBlockKind
	BlockQuoteKind
	ListItemKind
	ListKind
	FootnoteDefinitionKind
)

var blockKindNames = [...]string{
	RootKind:               "root",
	ParagraphKind:          "paragraph",
	ThematicBreakKind:      "thematicBreak",
	ATXHeadingKind:         "atxHeading",
	SetextHeadingKind:      "setextHeading",
	IndentedCodeBlockKind:  "indentedCodeBlock",
	FencedCodeBlockKind:    "fencedCodeBlock",
	HTMLBlockKind:          "htmlBlock",
	BlockQuoteKind:         "blockQuote",
	ListItemKind:           "listItem",
	ListKind:               "list",
	FootnoteDefinitionKind: "footnoteDefinition",
}

// String returns the kind's name as used in the JSON wire format.
func (kind BlockKind) String() string {
	if int(kind) < len(blockKindNames) && blockKindNames[kind] != "" {
		return blockKindNames[kind]
	}
	return fmt.Sprintf("BlockKind(%d)", uint16(kind))
}

// IsContainer reports whether blocks of the kind hold other blocks.
func (kind BlockKind) IsContainer() bool {
	switch kind {
	case RootKind, BlockQuoteKind, ListKind, ListItemKind, FootnoteDefinitionKind:
		return true
	default:
		return false
	}
}

// HasInlines reports whether blocks of the kind hold inline content.
func (kind BlockKind) HasInlines() bool {
	return kind == ParagraphKind || kind == ATXHeadingKind || kind == SetextHeadingKind
}

type listData struct {
	ordered      bool
	tight        bool
	bullet       byte
	delimiter    byte
	start        int
	padding      int
	markerOffset int
	markerEnd    int // absolute offset just past the marker
}

func (data listData) matches(other listData) bool {
	return data.ordered == other.ordered &&
		data.bullet == other.bullet &&
		data.delimiter == other.delimiter
}

type fenceData struct {
	char     byte
	length   int
	offset   int // indentation of the opening fence
	openLine int
}

// blockParser is a cursor on a line of text,
// used while splitting a document into blocks.
type blockParser struct {
	opts   *Parser
	source []byte
	lines  *LineIndex

	blocks    []Block // blocks[0] is the document root
	open      []int   // stack of open blocks, innermost last
	refs      ReferenceMap
	footnotes map[string]int

	lineno    int
	lineStart int    // offset of the beginning of the current line
	line      []byte // current line without its line ending

	offset               int // byte position within line
	column               int
	nextNonspace         int
	nextNonspaceColumn   int
	indent               int
	indented             bool
	blank                bool
	partiallyConsumedTab bool
	allClosed            bool
	lastMatched          int // depth in open of the last matched container
}

// Bytes returns the bytes remaining in the line.
func (p *blockParser) Bytes() []byte {
	return p.line[p.offset:]
}

// tip returns the deepest open block.
func (p *blockParser) tip() int {
	return p.open[len(p.open)-1]
}

func (p *blockParser) kind(id int) BlockKind {
	return p.blocks[id].kind
}

// findNextNonspace locates the next non-space character
// without advancing the cursor and computes the indentation from the cursor.
func (p *blockParser) findNextNonspace() {
	i := p.offset
	cols := p.column
	for i < len(p.line) {
		c := p.line[i]
		if c == ' ' {
			i++
			cols++
		} else if c == '\t' {
			i++
			cols += tabStopSize - cols%tabStopSize
		} else {
			break
		}
	}
	p.blank = i >= len(p.line)
	p.nextNonspace = i
	p.nextNonspaceColumn = cols
	p.indent = cols - p.column
	p.indented = p.indent >= codeBlockIndentLimit
}

// advanceNextNonspace moves the cursor to the position found by findNextNonspace.
func (p *blockParser) advanceNextNonspace() {
	p.offset = p.nextNonspace
	p.column = p.nextNonspaceColumn
	p.partiallyConsumedTab = false
}

// advanceOffset moves the cursor forward by count bytes,
// or by count columns if columns is true.
// Consuming part of a tab leaves the cursor on the tab.
func (p *blockParser) advanceOffset(count int, columns bool) {
	for count > 0 && p.offset < len(p.line) {
		c := p.line[p.offset]
		if c != '\t' {
			p.partiallyConsumedTab = false
			p.offset++
			p.column++
			count--
			continue
		}
		charsToTab := tabStopSize - p.column%tabStopSize
		if !columns {
			p.partiallyConsumedTab = false
			p.column += charsToTab
			p.offset++
			count--
			continue
		}
		p.partiallyConsumedTab = charsToTab > count
		charsToAdvance := charsToTab
		if charsToAdvance > count {
			charsToAdvance = count
		}
		p.column += charsToAdvance
		if !p.partiallyConsumedTab {
			p.offset++
		}
		count -= charsToAdvance
	}
}

// closeUnmatchedBlocks finalizes any open blocks
// that were not matched by the current line.
func (p *blockParser) closeUnmatchedBlocks() {
	if p.allClosed {
		return
	}
	for len(p.open)-1 > p.lastMatched {
		p.finalize(p.lineno - 1)
	}
	p.allClosed = true
}

// addChild opens a new block at the given position in the line
// and makes it the tip.
// Open blocks that cannot contain the new block are finalized first.
func (p *blockParser) addChild(kind BlockKind, pos int) int {
	for !blockRules[p.kind(p.tip())].canContain(kind) {
		p.finalize(p.lineno - 1)
	}
	if kind.IsContainer() && len(p.open) > p.opts.maxNestingDepth() {
		panic(&LimitError{
			Limit:  "nesting depth",
			Max:    p.opts.maxNestingDepth(),
			Offset: p.lineStart + pos,
		})
	}
	parent := p.tip()
	id := len(p.blocks)
	start := p.lineStart + pos
	p.blocks = append(p.blocks, Block{
		kind:      kind,
		span:      Span{Start: start, End: start},
		self:      Node{id: int32(id), typ: nodeTypeBlock},
		parent:    Node{id: int32(parent), typ: nodeTypeBlock},
		open:      true,
		startLine: p.lineno,
		endLine:   p.lineno,
		content:   NullSpan(),
		infoSpan:  NullSpan(),
	})
	p.blocks[parent].children = append(p.blocks[parent].children, p.blocks[id].self)
	p.open = append(p.open, id)
	return id
}

// finalize closes the tip block, which ends on the given line.
func (p *blockParser) finalize(line int) {
	id := p.tip()
	p.open = p.open[:len(p.open)-1]
	b := &p.blocks[id]
	b.open = false
	if line < b.startLine {
		b.endLine = b.startLine
		b.span.End = b.span.Start
	} else {
		b.endLine = line
		b.span.End = p.lines.LineSpan(line).End
	}
	if f := blockRules[b.kind].finalize; f != nil {
		f(p, id)
	}
	if b = &p.blocks[id]; b.span.End < b.span.Start {
		b.span.End = b.span.Start
	}
}

// addLine adds the rest of the current line to the tip block.
func (p *blockParser) addLine() {
	id := p.tip()
	b := &p.blocks[id]
	if b.kind == FencedCodeBlockKind && b.fence.openLine == p.lineno {
		return
	}
	start := p.lineStart + p.offset
	end := p.lineStart + len(p.line)
	if b.kind == ParagraphKind {
		start, end = trimLeftSpaceTab(p.source, start, end)
	}
	b.lines = append(b.lines, Span{Start: start, End: end})
	b.endLine = p.lineno
}

func trimLeftSpaceTab(b []byte, start, end int) (int, int) {
	for start < end && isSpaceOrTab(b[start]) {
		start++
	}
	return start, end
}

type parseResult int8

const (
	noMatch parseResult = iota
	matched
	// matchedEntireLine indicates that the rest of the line
	// belongs to a leaf block.
	matchedEntireLine
)

// codeBlockIndentLimit is the column width of an indent
// required to start an indented code block.
const codeBlockIndentLimit = 4

// blockStarts is the ordered list of new block checks.
// Each function receives the current container block.
var blockStarts = []func(p *blockParser, container int) parseResult{
	// Block quote.
	func(p *blockParser, container int) parseResult {
		if p.indented || peek(p.line, p.nextNonspace) != '>' {
			return noMatch
		}
		p.advanceNextNonspace()
		p.advanceOffset(1, false)
		if isSpaceOrTab(peek(p.line, p.offset)) {
			p.advanceOffset(1, true)
		}
		p.closeUnmatchedBlocks()
		p.addChild(BlockQuoteKind, p.nextNonspace)
		return matched
	},

	// ATX heading.
	func(p *blockParser, container int) parseResult {
		if p.indented {
			return noMatch
		}
		h := parseATXHeading(p.line[p.nextNonspace:])
		if h.level < 1 {
			return noMatch
		}
		p.closeUnmatchedBlocks()
		id := p.addChild(ATXHeadingKind, p.nextNonspace)
		b := &p.blocks[id]
		b.level = h.level
		base := p.lineStart + p.nextNonspace
		b.content = Span{Start: base + h.contentStart, End: base + h.contentEnd}
		p.advanceNextNonspace()
		p.advanceOffset(len(p.line)-p.offset, false)
		return matchedEntireLine
	},

	// Fenced code block.
	func(p *blockParser, container int) parseResult {
		if p.indented {
			return noMatch
		}
		rest := p.line[p.nextNonspace:]
		fenceLength := parseCodeFence(rest)
		if fenceLength < 0 {
			return noMatch
		}
		p.closeUnmatchedBlocks()
		id := p.addChild(FencedCodeBlockKind, p.nextNonspace)
		b := &p.blocks[id]
		b.fence = fenceData{
			char:     rest[0],
			length:   fenceLength,
			offset:   p.indent,
			openLine: p.lineno,
		}
		base := p.lineStart + p.nextNonspace
		infoStart, infoEnd := trimSpaceTab(rest, fenceLength, len(rest))
		b.infoSpan = Span{Start: base + infoStart, End: base + infoEnd}
		b.info = unescapeString(rest[infoStart:infoEnd])
		p.advanceNextNonspace()
		p.advanceOffset(len(p.line)-p.offset, false)
		return matchedEntireLine
	},

	// HTML block.
	func(p *blockParser, container int) parseResult {
		if p.indented || peek(p.line, p.nextNonspace) != '<' {
			return noMatch
		}
		s := p.line[p.nextNonspace:]
		for i, cond := range htmlBlockConditions {
			if !cond.startCondition(s) {
				continue
			}
			if !cond.canInterruptParagraph && (p.kind(container) == ParagraphKind || p.maybeLazy()) {
				continue
			}
			p.closeUnmatchedBlocks()
			// Leading spaces are part of the HTML block.
			id := p.addChild(HTMLBlockKind, p.offset)
			p.blocks[id].htmlType = i + 1
			return matchedEntireLine
		}
		return noMatch
	},

	// Setext heading.
	func(p *blockParser, container int) parseResult {
		if p.indented || p.kind(container) != ParagraphKind {
			return noMatch
		}
		level := parseSetextHeadingUnderline(p.line[p.nextNonspace:])
		if level == 0 {
			return noMatch
		}
		p.closeUnmatchedBlocks()
		p.consumeLinkReferences(container)
		b := &p.blocks[container]
		if len(b.lines) == 0 {
			return noMatch
		}
		b.kind = SetextHeadingKind
		b.level = level
		first, last := b.lines[0], b.lines[len(b.lines)-1]
		_, contentEnd := trimSpaceTab(p.source, last.Start, last.End)
		b.content = Span{Start: first.Start, End: contentEnd}
		p.advanceOffset(len(p.line)-p.offset, false)
		return matchedEntireLine
	},

	// Thematic break.
	func(p *blockParser, container int) parseResult {
		if p.indented || parseThematicBreak(p.line[p.nextNonspace:]) < 0 {
			return noMatch
		}
		p.closeUnmatchedBlocks()
		p.addChild(ThematicBreakKind, p.nextNonspace)
		p.advanceOffset(len(p.line)-p.offset, false)
		return matchedEntireLine
	},

	// Footnote definition.
	func(p *blockParser, container int) parseResult {
		if !p.opts.footnotesEnabled() || p.indented || p.kind(container) == ParagraphKind {
			return noMatch
		}
		rest := p.line[p.nextNonspace:]
		labelEnd := parseFootnoteLabel(rest)
		if labelEnd < 0 || peek(rest, labelEnd) != ':' {
			return noMatch
		}
		p.closeUnmatchedBlocks()
		id := p.addChild(FootnoteDefinitionKind, p.nextNonspace)
		b := &p.blocks[id]
		b.label = string(rest[len("[^") : labelEnd-len("]")])
		b.list.markerEnd = p.lineStart + p.nextNonspace + labelEnd + 1
		if norm := NormalizeLabel(b.label); norm != "" {
			if _, exists := p.footnotes[norm]; !exists {
				p.footnotes[norm] = id
			}
		}
		p.advanceNextNonspace()
		p.advanceOffset(labelEnd+1, false)
		if p.findNextNonspace(); !p.blank {
			p.advanceNextNonspace()
		}
		return matched
	},

	// List item.
	func(p *blockParser, container int) parseResult {
		if p.indented && p.kind(container) != ListKind {
			return noMatch
		}
		data, ok := p.parseListMarker(container)
		if !ok {
			return noMatch
		}
		p.closeUnmatchedBlocks()
		if tip := p.tip(); p.kind(tip) != ListKind || !p.blocks[tip].list.matches(data) {
			id := p.addChild(ListKind, p.nextNonspace)
			p.blocks[id].list = data
			p.blocks[id].list.tight = true
		}
		id := p.addChild(ListItemKind, p.nextNonspace)
		p.blocks[id].list = data
		return matched
	},

	// Indented code block.
	func(p *blockParser, container int) parseResult {
		if !p.indented || p.kind(p.tip()) == ParagraphKind || p.blank {
			return noMatch
		}
		p.advanceOffset(codeBlockIndentLimit, true)
		p.closeUnmatchedBlocks()
		p.addChild(IndentedCodeBlockKind, p.offset)
		return matchedEntireLine
	},
}

// maybeLazy reports whether the current line could be
// a lazy continuation of an open paragraph.
func (p *blockParser) maybeLazy() bool {
	return !p.allClosed && !p.blank && p.kind(p.tip()) == ParagraphKind
}

// maybeSpecial reports whether a line starting with c
// could begin a block other than a paragraph.
func maybeSpecial(c byte) bool {
	return strings.IndexByte("#`~*+_=<>-[", c) >= 0 || isASCIIDigit(c)
}

type blockRule struct {
	// continuation attempts to match an open block against the current line.
	continuation func(p *blockParser, id int) parseResult
	// finalize is called after a block is closed.
	finalize     func(p *blockParser, id int)
	canContain   func(childKind BlockKind) bool
	acceptsLines bool
}

func canContainNonItem(childKind BlockKind) bool {
	return childKind != ListItemKind
}

func containsNothing(BlockKind) bool {
	return false
}

func alwaysMatch(*blockParser, int) parseResult {
	return matched
}

func neverMatch(*blockParser, int) parseResult {
	return noMatch
}

var blockRules map[BlockKind]blockRule

func init() {
	blockRules = map[BlockKind]blockRule{
		RootKind: {
			continuation: alwaysMatch,
			canContain:   canContainNonItem,
		},
		BlockQuoteKind: {
			continuation: func(p *blockParser, id int) parseResult {
				if p.indented || peek(p.line, p.nextNonspace) != '>' {
					return noMatch
				}
				p.advanceNextNonspace()
				p.advanceOffset(1, false)
				if isSpaceOrTab(peek(p.line, p.offset)) {
					p.advanceOffset(1, true)
				}
				return matched
			},
			canContain: canContainNonItem,
		},
		ListKind: {
			continuation: alwaysMatch,
			finalize:     finalizeList,
			canContain: func(childKind BlockKind) bool {
				return childKind == ListItemKind
			},
		},
		ListItemKind: {
			continuation: func(p *blockParser, id int) parseResult {
				b := &p.blocks[id]
				if p.blank {
					if len(b.children) == 0 {
						// Blank line after empty list item.
						return noMatch
					}
					p.advanceNextNonspace()
					return matched
				}
				if width := b.list.markerOffset + b.list.padding; p.indent >= width {
					p.advanceOffset(width, true)
					return matched
				}
				return noMatch
			},
			finalize:   finalizeItem,
			canContain: canContainNonItem,
		},
		FootnoteDefinitionKind: {
			continuation: func(p *blockParser, id int) parseResult {
				if p.blank {
					if len(p.blocks[id].children) == 0 {
						return noMatch
					}
					p.advanceNextNonspace()
					return matched
				}
				if p.indent >= codeBlockIndentLimit {
					p.advanceOffset(codeBlockIndentLimit, true)
					return matched
				}
				return noMatch
			},
			finalize:   finalizeItem,
			canContain: canContainNonItem,
		},
		ATXHeadingKind: {
			continuation: neverMatch,
			canContain:   containsNothing,
		},
		SetextHeadingKind: {
			continuation: neverMatch,
			canContain:   containsNothing,
		},
		ThematicBreakKind: {
			continuation: neverMatch,
			canContain:   containsNothing,
		},
		FencedCodeBlockKind: {
			continuation: func(p *blockParser, id int) parseResult {
				b := &p.blocks[id]
				if p.indent < codeBlockIndentLimit && peek(p.line, p.nextNonspace) == b.fence.char {
					n := parseClosingCodeFence(p.line[p.nextNonspace:])
					if n >= b.fence.length {
						end := p.lineStart + p.nextNonspace + n
						p.finalize(p.lineno)
						p.blocks[id].span.End = end
						return matchedEntireLine
					}
				}
				// Skip optional spaces of fence offset.
				for i := b.fence.offset; i > 0 && isSpaceOrTab(peek(p.line, p.offset)); i-- {
					p.advanceOffset(1, true)
				}
				return matched
			},
			canContain:   containsNothing,
			acceptsLines: true,
		},
		IndentedCodeBlockKind: {
			continuation: func(p *blockParser, id int) parseResult {
				switch {
				case p.indent >= codeBlockIndentLimit:
					p.advanceOffset(codeBlockIndentLimit, true)
				case p.blank:
					p.advanceNextNonspace()
				default:
					return noMatch
				}
				return matched
			},
			finalize:     finalizeIndentedCode,
			canContain:   containsNothing,
			acceptsLines: true,
		},
		HTMLBlockKind: {
			continuation: func(p *blockParser, id int) parseResult {
				if t := p.blocks[id].htmlType; p.blank && (t == 6 || t == 7) {
					return noMatch
				}
				return matched
			},
			canContain:   containsNothing,
			acceptsLines: true,
		},
		ParagraphKind: {
			continuation: func(p *blockParser, id int) parseResult {
				if p.blank {
					return noMatch
				}
				return matched
			},
			finalize:     finalizeParagraph,
			canContain:   containsNothing,
			acceptsLines: true,
		},
	}
}

func finalizeParagraph(p *blockParser, id int) {
	p.consumeLinkReferences(id)
	if len(p.blocks[id].lines) > 0 {
		return
	}
	// Only link reference definitions: remove from the tree.
	parent := &p.blocks[p.blocks[id].parent.id]
	if n := len(parent.children); n > 0 && int(parent.children[n-1].id) == id {
		parent.children = parent.children[:n-1]
	}
}

// finalizeItem ends a list item or footnote definition
// at the end of its last child.
func finalizeItem(p *blockParser, id int) {
	b := &p.blocks[id]
	if last := b.lastChild(); last >= 0 {
		b.span.End = p.blocks[last].span.End
		b.endLine = p.blocks[last].endLine
		return
	}
	b.endLine = b.startLine
	b.span.End = b.list.markerEnd
	if lineEnd := p.lines.LineSpan(b.startLine).End; b.span.End > lineEnd {
		b.span.End = lineEnd
	}
}

func finalizeList(p *blockParser, id int) {
	b := &p.blocks[id]
	b.list.tight = true
	items := b.children
itemLoop:
	for i, item := range items {
		if i+1 < len(items) && p.endsWithBlankLine(int(item.id), int(items[i+1].id)) {
			b.list.tight = false
			break
		}
		sub := p.blocks[item.id].children
		for j := 0; j+1 < len(sub); j++ {
			if p.endsWithBlankLine(int(sub[j].id), int(sub[j+1].id)) {
				b.list.tight = false
				break itemLoop
			}
		}
	}
	if last := b.lastChild(); last >= 0 {
		b.span.End = p.blocks[last].span.End
		b.endLine = p.blocks[last].endLine
	}
}

// endsWithBlankLine reports whether a blank line separates a block from its next sibling.
func (p *blockParser) endsWithBlankLine(id, next int) bool {
	return p.blocks[id].endLine+1 < p.blocks[next].startLine
}

func finalizeIndentedCode(p *blockParser, id int) {
	b := &p.blocks[id]
	n := len(b.lines)
	for n > 0 && isBlankLine(p.source[b.lines[n-1].Start:b.lines[n-1].End]) {
		n--
	}
	b.lines = b.lines[:n]
	if n == 0 {
		return
	}
	last := b.lines[n-1]
	b.span.End = last.End
	if line, err := p.lines.Line(last.Start); err == nil {
		b.endLine = line
	}
}

// parseListMarker attempts to parse a [list marker] at the cursor.
// On success, it advances the cursor past the marker
// and the spaces that are part of the list item's content indentation.
//
// [list marker]: https://spec.commonmark.org/0.30/#list-marker
func (p *blockParser) parseListMarker(container int) (listData, bool) {
	if p.indent >= codeBlockIndentLimit {
		return listData{}, false
	}
	data := listData{markerOffset: p.indent}
	rest := p.line[p.nextNonspace:]
	markerLength := 0
	switch c := peek(rest, 0); {
	case c == '*' || c == '+' || c == '-':
		data.bullet = c
		markerLength = 1
	case isASCIIDigit(c):
		n := 0
		for n < len(rest) && n < 10 && isASCIIDigit(rest[n]) {
			data.start = data.start*10 + int(rest[n]-'0')
			n++
		}
		if n > 9 || (peek(rest, n) != '.' && peek(rest, n) != ')') {
			return listData{}, false
		}
		if p.kind(container) == ParagraphKind && data.start != 1 {
			return listData{}, false
		}
		data.ordered = true
		data.delimiter = rest[n]
		markerLength = n + 1
	default:
		return listData{}, false
	}

	// Marker must be followed by whitespace or the end of the line.
	if next := peek(rest, markerLength); markerLength < len(rest) && !isSpaceOrTab(next) {
		return listData{}, false
	}
	// An item that interrupts a paragraph must not start with a blank line.
	if p.kind(container) == ParagraphKind && isBlankLine(rest[markerLength:]) {
		return listData{}, false
	}

	p.advanceNextNonspace()
	p.advanceOffset(markerLength, true)
	data.markerEnd = p.lineStart + p.offset
	spacesStartCol := p.column
	spacesStartOffset := p.offset
	for {
		p.advanceOffset(1, true)
		if !(p.column-spacesStartCol < 5 && isSpaceOrTab(peek(p.line, p.offset))) {
			break
		}
	}
	blankItem := p.offset >= len(p.line)
	spacesAfterMarker := p.column - spacesStartCol
	if spacesAfterMarker >= 5 || spacesAfterMarker < 1 || blankItem {
		data.padding = markerLength + 1
		p.column = spacesStartCol
		p.offset = spacesStartOffset
		p.partiallyConsumedTab = false
		if isSpaceOrTab(peek(p.line, p.offset)) {
			p.advanceOffset(1, true)
		}
	} else {
		data.padding = markerLength + spacesAfterMarker
	}
	return data, true
}

// parseThematicBreak attempts to parse the line as a [thematic break].
// It returns the end of the thematic break characters
// or -1 if the line is not a thematic break.
// parseThematicBreak assumes that the caller has stripped any leading indentation.
//
// [thematic break]: https://spec.commonmark.org/0.30/#thematic-breaks
func parseThematicBreak(line []byte) (end int) {
	n := 0
	var want byte
	for i, b := range line {
		switch b {
		case '-', '_', '*':
			if n == 0 {
				want = b
			} else if b != want {
				return -1
			}
			n++
			end = i + 1
		case ' ', '\t':
			// Ignore
		default:
			return -1
		}
	}
	if n < 3 {
		return -1
	}
	return end
}

// parseSetextHeadingUnderline returns the heading level
// of a [setext heading underline] or zero if the line is not one.
// It assumes that the caller has stripped any leading indentation.
//
// [setext heading underline]: https://spec.commonmark.org/0.30/#setext-heading-underline
func parseSetextHeadingUnderline(line []byte) int {
	c := peek(line, 0)
	if c != '=' && c != '-' {
		return 0
	}
	i := 0
	for i < len(line) && line[i] == c {
		i++
	}
	if !isBlankLine(line[i:]) {
		return 0
	}
	if c == '=' {
		return 1
	}
	return 2
}

// parseCodeFence returns the length of the [code fence] at the start of line
// or -1 if line does not start a fenced code block.
// It assumes that the caller has stripped any leading indentation.
//
// [code fence]: https://spec.commonmark.org/0.30/#code-fence
func parseCodeFence(line []byte) int {
	c := peek(line, 0)
	if c != '`' && c != '~' {
		return -1
	}
	n := 0
	for n < len(line) && line[n] == c {
		n++
	}
	if n < 3 {
		return -1
	}
	if c == '`' && strings.IndexByte(string(line[n:]), '`') >= 0 {
		// Info strings for backtick fences may not contain backticks.
		return -1
	}
	return n
}

// parseClosingCodeFence returns the length of the closing code fence
// at the start of line or -1 if the line is not a closing fence.
func parseClosingCodeFence(line []byte) int {
	c := peek(line, 0)
	if c != '`' && c != '~' {
		return -1
	}
	n := 0
	for n < len(line) && line[n] == c {
		n++
	}
	if n < 3 || !isBlankLine(line[n:]) {
		return -1
	}
	return n
}

type atxHeading struct {
	level        int // 1-6
	contentStart int
	contentEnd   int
}

// parseATXHeading attempts to parse the line as an [ATX heading].
// The level is zero if the line is not an ATX heading.
// parseATXHeading assumes that the caller has stripped any leading indentation.
//
// [ATX heading]: https://spec.commonmark.org/0.30/#atx-headings
func parseATXHeading(line []byte) atxHeading {
	var h atxHeading
	for h.level < len(line) && line[h.level] == '#' {
		h.level++
	}
	if h.level == 0 || h.level > 6 {
		return atxHeading{}
	}

	// Consume required whitespace before heading.
	i := h.level
	if i >= len(line) {
		h.contentStart = i
		h.contentEnd = i
		return h
	}
	if !isSpaceOrTab(line[i]) {
		return atxHeading{}
	}
	i++

	// Advance past leading whitespace.
	for i < len(line) && isSpaceOrTab(line[i]) {
		i++
	}
	h.contentStart = i

	// Find end of heading line. Skip past trailing spaces.
	h.contentEnd = len(line)
	hitHash := false
scanBack:
	for ; h.contentEnd > h.contentStart; h.contentEnd-- {
		switch line[h.contentEnd-1] {
		case ' ', '\t':
			if isEndEscaped(line[:h.contentEnd-1]) {
				break scanBack
			}
		case '#':
			hitHash = true
			break scanBack
		default:
			break scanBack
		}
	}
	if !hitHash {
		return h
	}

	// We've encountered one hashmark '#'.
	// Consume all of them, unless they are preceded by a space or tab.
scanTrailingHashes:
	for i := h.contentEnd - 1; ; i-- {
		if i <= h.contentStart {
			h.contentEnd = h.contentStart
			break
		}
		switch line[i] {
		case '#':
			// Keep going.
		case ' ', '\t':
			h.contentEnd = i + 1
			break scanTrailingHashes
		default:
			return h
		}
	}
	// We've hit the end of hashmarks. Trim trailing whitespace.
	for ; h.contentEnd > h.contentStart; h.contentEnd-- {
		if b := line[h.contentEnd-1]; !isSpaceOrTab(b) || isEndEscaped(line[:h.contentEnd-1]) {
			break
		}
	}
	return h
}
