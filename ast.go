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

import "sort"

// Document is a parsed Markdown source.
// Blocks and inlines are stored in pre-order,
// so a parent always precedes its children.
// A Document is immutable and safe to use from multiple goroutines.
type Document struct {
	source    []byte
	lines     *LineIndex
	blocks    []Block
	inlines   []Inline
	refs      ReferenceMap
	footnotes map[string]Node
}

// Root returns the document's [RootKind] block.
func (doc *Document) Root() *Block {
	return &doc.blocks[0]
}

// Source returns the Markdown source the document was parsed from.
// The caller must not modify the returned slice.
func (doc *Document) Source() []byte {
	return doc.source
}

// Lines returns the index of the source's lines.
func (doc *Document) Lines() *LineIndex {
	return doc.lines
}

// BlockCount returns the number of blocks in the document,
// including the root.
func (doc *Document) BlockCount() int {
	return len(doc.blocks)
}

// InlineCount returns the number of inlines in the document.
func (doc *Document) InlineCount() int {
	return len(doc.inlines)
}

// Block returns the block with the given pre-order index.
func (doc *Document) Block(i int) *Block {
	return &doc.blocks[i]
}

// Inline returns the inline with the given pre-order index.
func (doc *Document) Inline(i int) *Inline {
	return &doc.inlines[i]
}

// References returns the link reference definitions found in the document,
// keyed by normalized label.
func (doc *Document) References() ReferenceMap {
	return doc.refs
}

// Footnote returns the [FootnoteDefinitionKind] block for the given label
// or nil if the document does not define it.
func (doc *Document) Footnote(label string) *Block {
	n, ok := doc.footnotes[NormalizeLabel(label)]
	if !ok {
		return nil
	}
	return n.Block()
}

// NodeAt returns the innermost node whose span contains the given byte offset.
// A node contains the offsets in [Span.Start, Span.End).
// NodeAt returns the root block if no other node contains the offset
// and the zero Node if offset is outside the source.
func (doc *Document) NodeAt(offset int) Node {
	if offset < 0 || offset > len(doc.source) {
		return Node{}
	}
	curr := doc.Root().AsNode()
	for {
		children := curr.ChildCount()
		// Children are ordered and do not overlap.
		i := sort.Search(children, func(i int) bool {
			return curr.Child(i).Span().End > offset
		})
		if i >= children || curr.Child(i).Span().Start > offset {
			return curr
		}
		curr = curr.Child(i)
	}
}
