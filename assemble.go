// Copyright 2024 Ross Light
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

// assemble builds the final document from the block parser's output:
// blocks are renumbered in pre-order,
// the inline content of each leaf is parsed,
// and every node is given its line/character range.
func assemble(p *Parser, bp *blockParser) *Document {
	doc := &Document{
		source:    bp.source,
		lines:     bp.lines,
		refs:      bp.refs,
		footnotes: make(map[string]Node, len(bp.footnotes)),
	}

	// Pre-order traversal of the working tree.
	// Blocks removed from their parent (like paragraphs
	// that only held link reference definitions) are not reached.
	order := make([]int, 0, len(bp.blocks))
	newID := make([]int32, len(bp.blocks))
	for i := range newID {
		newID[i] = -1
	}
	stack := []int{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		newID[id] = int32(len(order))
		order = append(order, id)
		children := bp.blocks[id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, int(children[i].id))
		}
	}

	doc.blocks = make([]Block, len(order))
	for i, oldID := range order {
		b := bp.blocks[oldID]
		b.open = false
		b.self = Node{doc: doc, id: int32(i), typ: nodeTypeBlock}
		if i == 0 {
			b.parent = Node{}
		} else {
			b.parent = Node{doc: doc, id: newID[b.parent.id], typ: nodeTypeBlock}
		}
		if len(b.children) > 0 {
			children := make([]Node, len(b.children))
			for j, c := range b.children {
				children[j] = Node{doc: doc, id: newID[c.id], typ: nodeTypeBlock}
			}
			b.children = children
		}
		b.rng = doc.lines.mustRange(b.span)
		if len(b.lines) > 0 {
			b.lineRanges = make([]Range, len(b.lines))
			for j, line := range b.lines {
				b.lineRanges[j] = doc.lines.mustRange(line)
			}
		}
		if b.content.IsValid() {
			b.contentRange = doc.lines.mustRange(b.content)
		}
		doc.blocks[i] = b
	}
	for label, oldID := range bp.footnotes {
		if id := newID[oldID]; id >= 0 {
			doc.footnotes[label] = Node{doc: doc, id: id, typ: nodeTypeBlock}
		}
	}

	ip := newInlineParser(p, bp.refs, bp.footnotes)
	for i := range doc.blocks {
		if !doc.blocks[i].kind.HasInlines() {
			continue
		}
		buf := inlineContent(doc.source, &doc.blocks[i])
		if buf == nil {
			continue
		}
		emitInlines(doc, i, buf, ip.parse(buf.text), p.maxNestingDepth())
	}
	return doc
}

// inlineContent returns the buffer of inline content for a leaf block
// or nil if the block has none.
func inlineContent(source []byte, b *Block) *contentBuffer {
	switch b.kind {
	case ATXHeadingKind:
		if !b.content.IsValid() || b.content.Len() == 0 {
			return nil
		}
		return newContentBuffer(source, []Span{b.content}, false)
	default:
		if len(b.lines) == 0 {
			return nil
		}
		return newContentBuffer(source, b.lines, true)
	}
}

// emitInlines appends the tree rooted at root to the document's inlines in pre-order.
// Adjacent text nodes are merged.
func emitInlines(doc *Document, blockID int, buf *contentBuffer, root *inlineNode, maxDepth int) {
	type frame struct {
		node   *inlineNode
		parent int // index in doc.inlines or -1 for the block
		depth  int
	}

	var stack []frame
	var siblings []*inlineNode
	push := func(parent *inlineNode, parentIndex int, depth int) {
		siblings = siblings[:0]
		for c := parent.first; c != nil; c = c.next {
			if n := len(siblings); n > 0 && c.kind == TextKind &&
				siblings[n-1].kind == TextKind && siblings[n-1].end == c.start {
				siblings[n-1].end = c.end
				continue
			}
			siblings = append(siblings, c)
		}
		for i := len(siblings) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:   siblings[i],
				parent: parentIndex,
				depth:  depth,
			})
		}
	}

	block := doc.blocks[blockID].self
	push(root, -1, 1)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		span := buf.sourceSpan(f.node.start, f.node.end)
		if f.depth > maxDepth {
			panic(&LimitError{
				Limit:  "inline nesting depth",
				Max:    maxDepth,
				Offset: span.Start,
			})
		}

		idx := len(doc.inlines)
		self := Node{doc: doc, id: int32(idx), typ: nodeTypeInline}
		in := Inline{
			kind:         f.node.kind,
			span:         span,
			rng:          doc.lines.mustRange(span),
			self:         self,
			destination:  f.node.destination,
			title:        f.node.title,
			titlePresent: f.node.titlePresent,
			label:        f.node.label,
			literal:      f.node.literal,
			citation:     f.node.citation,
		}
		if f.parent < 0 {
			in.parent = block
			doc.blocks[blockID].children = append(doc.blocks[blockID].children, self)
		} else {
			in.parent = doc.inlines[f.parent].self
			doc.inlines[f.parent].children = append(doc.inlines[f.parent].children, self)
		}
		doc.inlines = append(doc.inlines, in)
		push(f.node, idx, f.depth+1)
	}
}
