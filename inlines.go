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
	"sort"
	"strings"
	"unicode/utf8"
)

// Inline represents Markdown content elements like text, links, or emphasis.
// Inlines are owned by a [Document] and are immutable.
type Inline struct {
	kind     InlineKind
	span     Span
	rng      Range
	self     Node
	parent   Node
	children []Node

	destination  string
	title        string
	titlePresent bool
	label        string
	literal      string
	citation     *Citation
}

// Kind returns the type of inline node
// or zero if the node is nil.
func (inline *Inline) Kind() InlineKind {
	if inline == nil {
		return 0
	}
	return inline.kind
}

// Span returns the byte offsets of the inline in the document's source
// or an invalid span if the node is nil.
func (inline *Inline) Span() Span {
	if inline == nil {
		return NullSpan()
	}
	return inline.span
}

// Range returns the position of the inline in the document's source.
func (inline *Inline) Range() Range {
	if inline == nil {
		return Range{}
	}
	return inline.rng
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (inline *Inline) ChildCount() int {
	if inline == nil {
		return 0
	}
	return len(inline.children)
}

// Child returns the i'th child of the node.
func (inline *Inline) Child(i int) *Inline {
	return inline.children[i].Inline()
}

// Parent returns the node that contains the inline:
// either another inline or the leaf block.
func (inline *Inline) Parent() Node {
	if inline == nil {
		return Node{}
	}
	return inline.parent
}

// AsNode converts the inline node to a [Node] pointer.
func (inline *Inline) AsNode() Node {
	if inline == nil {
		return Node{}
	}
	return inline.self
}

// Text converts a non-container inline node into a string.
// Backslash escapes and entity references in text are decoded.
func (inline *Inline) Text(source []byte) string {
	switch inline.Kind() {
	case TextKind:
		return unescapeString(source[inline.span.Start:inline.span.End])
	case SoftLineBreakKind, HardLineBreakKind:
		return "\n"
	case CodeSpanKind, RawHTMLKind, AutolinkKind:
		return inline.literal
	case FootnoteReferenceKind:
		return inline.label
	case CitationKind:
		return inline.citation.Key
	default:
		return ""
	}
}

// LinkDestination returns the destination (URL) of a link, image, or autolink.
func (inline *Inline) LinkDestination() string {
	switch inline.Kind() {
	case LinkKind, ImageKind, AutolinkKind:
		return inline.destination
	default:
		return ""
	}
}

// LinkTitle returns the title of a link or image
// and whether one was present in the source.
func (inline *Inline) LinkTitle() (title string, present bool) {
	switch inline.Kind() {
	case LinkKind, ImageKind:
		return inline.title, inline.titlePresent
	default:
		return "", false
	}
}

// LinkReference returns the normalized label of the link reference definition
// that a link or image resolved against,
// or the empty string for links with an inline destination.
func (inline *Inline) LinkReference() string {
	switch inline.Kind() {
	case LinkKind, ImageKind:
		return inline.label
	default:
		return ""
	}
}

// FootnoteLabel returns the label of a [FootnoteReferenceKind] as written in the source.
func (inline *Inline) FootnoteLabel() string {
	if inline.Kind() != FootnoteReferenceKind {
		return ""
	}
	return inline.label
}

// Citation returns the data of a [CitationKind] node.
func (inline *Inline) Citation() (Citation, bool) {
	if inline.Kind() != CitationKind || inline.citation == nil {
		return Citation{}, false
	}
	return *inline.citation, true
}

// InlineKind is an enumeration of values returned by [*Inline.Kind].
type InlineKind uint16

const (
	TextKind InlineKind = 1 + iota
	SoftLineBreakKind
	HardLineBreakKind
	EmphasisKind
	StrongKind
	StrikethroughKind
	CodeSpanKind
	LinkKind
	ImageKind
	AutolinkKind
	RawHTMLKind
	FootnoteReferenceKind
	CitationKind
)

var inlineKindNames = [...]string{
	TextKind:              "text",
	SoftLineBreakKind:     "softLineBreak",
	HardLineBreakKind:     "hardLineBreak",
	EmphasisKind:          "emphasis",
	StrongKind:            "strong",
	StrikethroughKind:     "strikethrough",
	CodeSpanKind:          "codeSpan",
	LinkKind:              "link",
	ImageKind:             "image",
	AutolinkKind:          "autolink",
	RawHTMLKind:           "rawHtml",
	FootnoteReferenceKind: "footnoteReference",
	CitationKind:          "citation",
}

// String returns the kind's name as used in the JSON wire format.
func (kind InlineKind) String() string {
	if int(kind) < len(inlineKindNames) && inlineKindNames[kind] != "" {
		return inlineKindNames[kind]
	}
	return fmt.Sprintf("InlineKind(%d)", uint16(kind))
}

// inlineNode is a node in the tree built by [inlineParser].
// Offsets are relative to the parser's content buffer.
// Siblings form a doubly linked list so that delimiter processing
// can splice runs of nodes in constant time.
type inlineNode struct {
	kind        InlineKind
	start       int
	end         int
	prev, next  *inlineNode
	first, last *inlineNode

	destination  string
	title        string
	titlePresent bool
	label        string
	literal      string
	citation     *Citation
}

// inlineParser converts the content of a single leaf block into inline nodes.
//
// This corresponds to [Phase 2]
// in the CommonMark recommended parsing strategy.
//
// [Phase 2]: https://spec.commonmark.org/0.30/#phase-2-inline-structure
type inlineParser struct {
	opts      *Parser
	refs      ReferenceMap
	footnotes map[string]int

	text      []byte
	pos       int
	textStart int // start of pending plain text
	root      inlineNode

	delims      []delimiterStackElement
	top         int // last element of the delimiter stack or -1
	brackets    []bracket
	linkBarrier int
	tickRuns    map[int][]int
}

type bracket struct {
	node              *inlineNode
	image             bool
	bracketAfter      bool
	previousDelimiter int
	index             int // offset just past the opening bracket
}

func newInlineParser(opts *Parser, refs ReferenceMap, footnotes map[string]int) *inlineParser {
	return &inlineParser{
		opts:      opts,
		refs:      refs,
		footnotes: footnotes,
	}
}

// parse tokenizes text and resolves delimiters,
// returning the root of the resulting tree.
// The returned nodes are only valid until the next call to parse.
func (p *inlineParser) parse(text []byte) *inlineNode {
	p.text = text
	p.pos = 0
	p.textStart = 0
	p.root = inlineNode{}
	p.delims = p.delims[:0]
	p.top = -1
	p.brackets = p.brackets[:0]
	p.linkBarrier = 0
	p.tickRuns = nil

	for p.pos < len(p.text) {
		if !p.parseSpecial() {
			p.pos++
		}
	}
	p.flushText(p.pos)
	p.processEmphasis(-1)
	return &p.root
}

// parseSpecial attempts to parse a construct at the current position.
// It returns false if the current byte is plain text.
func (p *inlineParser) parseSpecial() bool {
	switch c := p.text[p.pos]; c {
	case '\n':
		p.parseNewline()
		return true
	case '\\':
		return p.parseBackslash()
	case '`':
		p.parseBackticks()
		return true
	case '*', '_':
		p.parseDelimiterRun()
		return true
	case '~':
		if !p.opts.strikethroughEnabled() {
			return false
		}
		p.parseDelimiterRun()
		return true
	case '[':
		if p.parseFootnoteReference() || p.parseBracketedCitation() {
			return true
		}
		p.parseOpenBracket(false)
		return true
	case '!':
		if peek(p.text, p.pos+1) != '[' {
			return false
		}
		p.parseOpenBracket(true)
		return true
	case ']':
		p.parseCloseBracket()
		return true
	case '<':
		return p.parseAutolink() || p.parseRawHTML()
	case '@':
		return p.parseInTextCitation()
	default:
		return false
	}
}

// flushText adds the pending plain text up to end as a text node.
func (p *inlineParser) flushText(end int) {
	if p.textStart < end {
		p.append(&inlineNode{
			kind:  TextKind,
			start: p.textStart,
			end:   end,
		})
	}
	p.textStart = end
}

// append adds a node to the end of the top-level sequence.
func (p *inlineParser) append(node *inlineNode) {
	appendChild(&p.root, node)
}

// addLeaf adds a node covering [start, p.pos) after flushing any pending text.
func (p *inlineParser) addLeaf(node *inlineNode) {
	p.flushText(node.start)
	p.append(node)
	p.textStart = node.end
	p.pos = node.end
}

func appendChild(parent, node *inlineNode) {
	node.prev = parent.last
	node.next = nil
	if parent.last != nil {
		parent.last.next = node
	} else {
		parent.first = node
	}
	parent.last = node
}

// unlink removes a top-level node from the sequence.
func (p *inlineParser) unlink(node *inlineNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else if p.root.first == node {
		p.root.first = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else if p.root.last == node {
		p.root.last = node.prev
	}
	node.prev = nil
	node.next = nil
}

func (p *inlineParser) parseNewline() {
	nl := p.pos
	breakStart := nl
	for breakStart > p.textStart && p.text[breakStart-1] == ' ' {
		breakStart--
	}
	kind := SoftLineBreakKind
	if nl-breakStart >= 2 {
		kind = HardLineBreakKind
	}
	p.flushText(breakStart)
	p.addLeaf(&inlineNode{
		kind:  kind,
		start: breakStart,
		end:   nl + 1,
	})
}

func (p *inlineParser) parseBackslash() bool {
	start := p.pos
	switch next := peek(p.text, start+1); {
	case next == '\n' && start+1 < len(p.text):
		p.addLeaf(&inlineNode{
			kind:  HardLineBreakKind,
			start: start,
			end:   start + 2,
		})
		return true
	case isASCIIPunctuation(next):
		// Escaped characters are literal text.
		p.pos = start + 2
		return true
	default:
		return false
	}
}

// parseBackticks parses a [code span] or a literal backtick string.
//
// [code span]: https://spec.commonmark.org/0.30/#code-spans
func (p *inlineParser) parseBackticks() {
	start := p.pos
	afterOpen := start
	for afterOpen < len(p.text) && p.text[afterOpen] == '`' {
		afterOpen++
	}
	closer := p.findBacktickRun(afterOpen-start, afterOpen)
	if closer < 0 {
		// Advance past literal backtick string.
		p.pos = afterOpen
		return
	}
	end := closer + (afterOpen - start)
	p.addLeaf(&inlineNode{
		kind:    CodeSpanKind,
		start:   start,
		end:     end,
		literal: codeSpanLiteral(p.text[afterOpen:closer]),
	})
}

// findBacktickRun returns the start of the first backtick string
// of exactly the given length that begins at or after from,
// or -1 if there is none.
func (p *inlineParser) findBacktickRun(length, from int) int {
	if p.tickRuns == nil {
		p.tickRuns = make(map[int][]int)
		for i := 0; i < len(p.text); {
			if p.text[i] != '`' {
				i++
				continue
			}
			j := i
			for j < len(p.text) && p.text[j] == '`' {
				j++
			}
			p.tickRuns[j-i] = append(p.tickRuns[j-i], i)
			i = j
		}
	}
	runs := p.tickRuns[length]
	if i := sort.SearchInts(runs, from); i < len(runs) {
		return runs[i]
	}
	return -1
}

func codeSpanLiteral(content []byte) string {
	s := strings.ReplaceAll(string(content), "\n", " ")
	if len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.Trim(s, " ") != "" {
		s = s[1 : len(s)-1]
	}
	return s
}

func (p *inlineParser) parseDelimiterRun() {
	start := p.pos
	c := p.text[start]
	end := start + 1
	for end < len(p.text) && p.text[end] == c {
		end++
	}
	if c == '~' && end-start != 2 {
		// Only double tildes delimit strikethrough.
		p.pos = end
		return
	}
	node := &inlineNode{
		kind:  TextKind,
		start: start,
		end:   end,
	}
	p.addLeaf(node)

	elem := delimiterStackElement{
		flags: activeFlag | emphasisFlags(p.text, start, end),
		n:     end - start,
		node:  node,
		prev:  p.top,
		next:  -1,
	}
	switch c {
	case '*':
		elem.typ = inlineDelimiterStar
	case '_':
		elem.typ = inlineDelimiterUnderscore
	case '~':
		elem.typ = inlineDelimiterTilde
	}
	idx := len(p.delims)
	p.delims = append(p.delims, elem)
	if p.top >= 0 {
		p.delims[p.top].next = idx
	}
	p.top = idx
}

// emphasisFlags determines whether the given [delimiter run]
// [can open emphasis] and/or [can close emphasis].
//
// [delimiter run]: https://spec.commonmark.org/0.30/#delimiter-run
// [can open emphasis]: https://spec.commonmark.org/0.30/#can-open-emphasis
// [can close emphasis]: https://spec.commonmark.org/0.30/#can-close-emphasis
func emphasisFlags(source []byte, start, end int) uint8 {
	var flags uint8
	prevChar := ' '
	if start > 0 {
		prevChar, _ = utf8.DecodeLastRune(source[:start])
	}
	nextChar := ' '
	if end < len(source) {
		nextChar, _ = utf8.DecodeRune(source[end:])
	}
	leftFlanking := !isUnicodeWhitespace(nextChar) &&
		(!isUnicodePunctuation(nextChar) || isUnicodeWhitespace(prevChar) || isUnicodePunctuation(prevChar))
	rightFlanking := !isUnicodeWhitespace(prevChar) &&
		(!isUnicodePunctuation(prevChar) || isUnicodeWhitespace(nextChar) || isUnicodePunctuation(nextChar))
	if leftFlanking && (source[start] != '_' || !rightFlanking || isUnicodePunctuation(prevChar)) {
		flags |= openerFlag
	}
	if rightFlanking && (source[start] != '_' || !leftFlanking || isUnicodePunctuation(nextChar)) {
		flags |= closerFlag
	}
	return flags
}

// processEmphasis implements the [process emphasis procedure]
// to convert delimiters to emphasis spans.
// stackBottom is the index of the delimiter below which
// no delimiters are considered, or -1 to process the whole stack.
//
// [process emphasis procedure]: https://spec.commonmark.org/0.30/#process-emphasis
func (p *inlineParser) processEmphasis(stackBottom int) {
	var openersBottom [openersBottomCount]int
	for i := range openersBottom {
		openersBottom[i] = stackBottom
	}

	// Find the first delimiter above stackBottom.
	closer := p.top
	for closer >= 0 && p.delims[closer].prev != stackBottom {
		closer = p.delims[closer].prev
	}

	for closer >= 0 {
		c := &p.delims[closer]
		if c.flags&closerFlag == 0 {
			closer = c.next
			continue
		}

		// Look back in the stack
		// (staying above stackBottom and the openers bottom for this delimiter type)
		// for the first matching potential opener.
		bottomIndex := c.openersBottomIndex()
		opener := c.prev
		for opener >= 0 && opener != stackBottom && opener != openersBottom[bottomIndex] &&
			!isEmphasisDelimiterMatch(p.delims[opener], *c) {
			opener = p.delims[opener].prev
		}
		if opener < 0 || opener == stackBottom || opener == openersBottom[bottomIndex] {
			// We know that there are no openers for this kind of closer up to and including this point,
			// so put a lower bound on future searches.
			openersBottom[bottomIndex] = c.prev
			next := c.next
			if c.flags&openerFlag == 0 {
				// Remove delimiter from the stack
				// since we know it can't be an opener either.
				p.removeDelimiter(closer)
			}
			closer = next
			continue
		}

		o := &p.delims[opener]
		openerNode, closerNode := o.node, c.node
		kind := EmphasisKind
		use := 1
		switch {
		case c.typ == inlineDelimiterTilde:
			kind = StrikethroughKind
			use = 2
		case openerNode.end-openerNode.start >= 2 && closerNode.end-closerNode.start >= 2:
			kind = StrongKind
			use = 2
		}
		openerNode.end -= use
		closerNode.start += use
		p.wrap(kind, openerNode, closerNode)

		// Remove any delimiters between the opener and closer from the delimiter stack.
		o.next = closer
		c.prev = opener

		// If either the opening or the closing text nodes became empty,
		// remove them from the tree.
		if openerNode.start == openerNode.end {
			p.unlink(openerNode)
			p.removeDelimiter(opener)
		}
		if closerNode.start == closerNode.end {
			p.unlink(closerNode)
			next := p.delims[closer].next
			p.removeDelimiter(closer)
			closer = next
		}
	}

	// After we're done, we remove all delimiters above stackBottom from the delimiter stack.
	for p.top >= 0 && p.top != stackBottom {
		p.removeDelimiter(p.top)
	}
}

// wrap inserts a new node that wraps the nodes between two sibling nodes, exclusive.
// The new node's span includes the consumed delimiters.
func (p *inlineParser) wrap(kind InlineKind, startNode, endNode *inlineNode) {
	newNode := &inlineNode{
		kind:  kind,
		start: startNode.end,
		end:   endNode.start,
	}
	if first := startNode.next; first != endNode {
		last := endNode.prev
		first.prev = nil
		last.next = nil
		newNode.first = first
		newNode.last = last
	}
	startNode.next = newNode
	newNode.prev = startNode
	newNode.next = endNode
	endNode.prev = newNode
}

func (p *inlineParser) removeDelimiter(i int) {
	d := &p.delims[i]
	if d.prev >= 0 {
		p.delims[d.prev].next = d.next
	}
	if d.next >= 0 {
		p.delims[d.next].prev = d.prev
	}
	if p.top == i {
		p.top = d.prev
	}
	d.node = nil
	d.prev = -1
	d.next = -1
}

func (p *inlineParser) parseOpenBracket(image bool) {
	start := p.pos
	end := start + 1
	if image {
		end++
	}
	node := &inlineNode{
		kind:  TextKind,
		start: start,
		end:   end,
	}
	p.addLeaf(node)
	if n := len(p.brackets); n > 0 {
		p.brackets[n-1].bracketAfter = true
	}
	p.brackets = append(p.brackets, bracket{
		node:              node,
		image:             image,
		previousDelimiter: p.top,
		index:             end,
	})
}

// popBracket removes the top of the bracket stack.
func (p *inlineParser) popBracket() {
	p.brackets = p.brackets[:len(p.brackets)-1]
	if p.linkBarrier > len(p.brackets) {
		p.linkBarrier = len(p.brackets)
	}
}

// parseCloseBracket handles a ']' by trying to match it
// against the nearest opening bracket to form a link or image.
func (p *inlineParser) parseCloseBracket() {
	start := p.pos
	afterClose := start + 1
	closeText := &inlineNode{
		kind:  TextKind,
		start: start,
		end:   afterClose,
	}
	if len(p.brackets) == 0 {
		p.addLeaf(closeText)
		return
	}
	openerIndex := len(p.brackets) - 1
	opener := p.brackets[openerIndex]
	if !opener.image && openerIndex < p.linkBarrier {
		// Links may not contain other links.
		p.addLeaf(closeText)
		p.popBracket()
		return
	}

	var (
		matched bool
		end     int
		dest    string
		title   string
		hasT    bool
		label   string
	)
	if peek(p.text, afterClose) == '(' {
		pos := skipLinkSpace(p.text, afterClose+1)
		if d, destEnd, ok := parseLinkDestination(p.text, pos); ok {
			pos = skipLinkSpace(p.text, destEnd)
			if pos != destEnd {
				if t, titleEnd, ok := parseLinkTitle(p.text, pos); ok {
					title, hasT = t, true
					pos = skipLinkSpace(p.text, titleEnd)
				}
			}
			if peek(p.text, pos) == ')' {
				matched = true
				dest = d
				end = pos + 1
			} else {
				title, hasT = "", false
			}
		}
	}
	if !matched {
		var rawLabel []byte
		end = afterClose
		labelEnd := parseLinkLabel(p.text, afterClose)
		switch {
		case labelEnd > afterClose+2:
			rawLabel = p.text[afterClose+1 : labelEnd-1]
			end = labelEnd
		case !opener.bracketAfter:
			// Empty or missing second label means to use the first label as the reference.
			rawLabel = p.text[opener.index:start]
			if labelEnd == afterClose+2 {
				end = labelEnd
			}
		}
		if norm := NormalizeLabel(string(rawLabel)); norm != "" && len(rawLabel) <= maxLinkLabelLength {
			if def, ok := p.refs[norm]; ok {
				matched = true
				dest = def.Destination
				title, hasT = def.Title, def.TitlePresent
				label = norm
			}
		}
	}
	if !matched {
		p.popBracket()
		p.addLeaf(closeText)
		return
	}

	p.flushText(start)
	p.processEmphasis(opener.previousDelimiter)
	node := &inlineNode{
		kind:         LinkKind,
		start:        opener.node.start,
		end:          end,
		destination:  dest,
		title:        title,
		titlePresent: hasT,
		label:        label,
	}
	if opener.image {
		node.kind = ImageKind
	}
	if first := opener.node.next; first != nil {
		last := p.root.last
		opener.node.next = nil
		p.root.last = opener.node
		first.prev = nil
		node.first = first
		node.last = last
	}
	p.unlink(opener.node)
	p.popBracket()
	p.append(node)
	p.pos = end
	p.textStart = end
	if !opener.image {
		// Deactivate earlier link openers.
		p.linkBarrier = len(p.brackets)
	}
}

// parseAutolink parses an [autolink] at the current position.
//
// [autolink]: https://spec.commonmark.org/0.30/#autolinks
func (p *inlineParser) parseAutolink() bool {
	start := p.pos
	rest := p.text[start:]
	if end := parseURIAutolink(rest); end > 0 {
		content := string(rest[1 : end-1])
		p.addLeaf(&inlineNode{
			kind:        AutolinkKind,
			start:       start,
			end:         start + end,
			destination: content,
			literal:     content,
		})
		return true
	}
	if end := parseEmailAutolink(rest); end > 0 {
		content := string(rest[1 : end-1])
		p.addLeaf(&inlineNode{
			kind:        AutolinkKind,
			start:       start,
			end:         start + end,
			destination: "mailto:" + content,
			literal:     content,
		})
		return true
	}
	return false
}

// parseURIAutolink returns the length of the URI autolink
// at the start of b (including angle brackets) or -1.
func parseURIAutolink(b []byte) int {
	if peek(b, 0) != '<' || !isASCIILetter(peek(b, 1)) {
		return -1
	}
	i := 2
	for i < len(b) && (isASCIIAlphanumeric(b[i]) || b[i] == '+' || b[i] == '.' || b[i] == '-') {
		i++
	}
	if n := i - 1; n < 2 || n > 32 || peek(b, i) != ':' {
		return -1
	}
	for i++; i < len(b); i++ {
		switch c := b[i]; {
		case c == '>':
			return i + 1
		case c == '<' || c <= ' ':
			return -1
		}
	}
	return -1
}

// parseEmailAutolink returns the length of the email autolink
// at the start of b (including angle brackets) or -1.
func parseEmailAutolink(b []byte) int {
	if peek(b, 0) != '<' {
		return -1
	}
	i := 1
	for i < len(b) && (isASCIIAlphanumeric(b[i]) || strings.IndexByte(".!#$%&'*+/=?^_`{|}~-", b[i]) >= 0) {
		i++
	}
	if i == 1 || peek(b, i) != '@' {
		return -1
	}
	i++
	for {
		// Domain label: alphanumeric at both ends, at most 63 characters.
		labelStart := i
		for i < len(b) && (isASCIIAlphanumeric(b[i]) || b[i] == '-') && i-labelStart < 63 {
			i++
		}
		if i == labelStart || b[labelStart] == '-' || b[i-1] == '-' {
			return -1
		}
		switch peek(b, i) {
		case '.':
			i++
		case '>':
			return i + 1
		default:
			return -1
		}
	}
}

// parseRawHTML parses [raw HTML] at the current position.
//
// [raw HTML]: https://spec.commonmark.org/0.30/#raw-html
func (p *inlineParser) parseRawHTML() bool {
	start := p.pos
	end := parseHTMLTag(p.text, start)
	if end < 0 {
		return false
	}
	p.addLeaf(&inlineNode{
		kind:    RawHTMLKind,
		start:   start,
		end:     end,
		literal: string(p.text[start:end]),
	})
	return true
}

type delimiterStackElement struct {
	typ   inlineDelimiter
	flags uint8
	n     int // length of the original delimiter run
	node  *inlineNode
	prev  int
	next  int
}

const openersBottomCount = 4 * 6

func (elem delimiterStackElement) openersBottomIndex() int {
	i := int(elem.typ) * 6
	if elem.flags&openerFlag != 0 {
		i += 3
	}
	return i + elem.n%3
}

func isEmphasisDelimiterMatch(open, close delimiterStackElement) bool {
	return open.typ == close.typ &&
		open.flags&openerFlag != 0 &&
		close.flags&closerFlag != 0 &&
		// Rule 9 & 10 of https://spec.commonmark.org/0.30/#emphasis-and-strong-emphasis
		(open.flags&closerFlag == 0 && close.flags&openerFlag == 0 ||
			(open.n+close.n)%3 != 0 ||
			open.n%3 == 0 && close.n%3 == 0)
}

const (
	activeFlag = 1 << iota
	openerFlag
	closerFlag
)

type inlineDelimiter int8

const (
	inlineDelimiterStar inlineDelimiter = 1 + iota
	inlineDelimiterUnderscore
	inlineDelimiterTilde
)

func (d inlineDelimiter) String() string {
	switch d {
	case inlineDelimiterStar:
		return "*"
	case inlineDelimiterUnderscore:
		return "_"
	case inlineDelimiterTilde:
		return "~~"
	default:
		return fmt.Sprintf("inlineDelimiter(%d)", int8(d))
	}
}
