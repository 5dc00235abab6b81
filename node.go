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

const (
	nodeTypeBlock = 1 + iota
	nodeTypeInline
)

// Node is a reference to a [Block] or an [Inline] in a [Document].
// Nodes can be compared for equality using the == operator.
// The zero value refers to no node.
type Node struct {
	doc *Document
	id  int32
	typ uint8
}

// IsZero reports whether n refers to no node.
func (n Node) IsZero() bool {
	return n.typ == 0
}

// ID returns the node's index in its document's block or inline arena.
// Indices match the element indices of the JSON encoding.
func (n Node) ID() int {
	return int(n.id)
}

// Block returns the referenced block
// or nil if the node does not reference a block.
func (n Node) Block() *Block {
	if n.typ != nodeTypeBlock || n.doc == nil {
		return nil
	}
	return &n.doc.blocks[n.id]
}

// Inline returns the referenced inline
// or nil if the node does not reference an inline.
func (n Node) Inline() *Inline {
	if n.typ != nodeTypeInline || n.doc == nil {
		return nil
	}
	return &n.doc.inlines[n.id]
}

// Span returns the span of the referenced node
// or an invalid span if the node is zero.
func (n Node) Span() Span {
	if b := n.Block(); b != nil {
		return b.Span()
	}
	if i := n.Inline(); i != nil {
		return i.Span()
	}
	return NullSpan()
}

// Range returns the position of the referenced node.
func (n Node) Range() Range {
	if b := n.Block(); b != nil {
		return b.Range()
	}
	if i := n.Inline(); i != nil {
		return i.Range()
	}
	return Range{}
}

// Parent returns the node's parent
// or the zero Node for the document root.
func (n Node) Parent() Node {
	if b := n.Block(); b != nil {
		return b.Parent()
	}
	if i := n.Inline(); i != nil {
		return i.Parent()
	}
	return Node{}
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on the zero value returns 0.
func (n Node) ChildCount() int {
	if b := n.Block(); b != nil {
		return b.ChildCount()
	}
	if i := n.Inline(); i != nil {
		return i.ChildCount()
	}
	return 0
}

// Child returns the i'th child of the node.
func (n Node) Child(i int) Node {
	if b := n.Block(); b != nil {
		return b.Child(i)
	}
	if in := n.Inline(); in != nil {
		return in.children[i]
	}
	panic("Child on zero Node")
}

// KindName returns the wire name of the node's kind,
// like "paragraph" or "emphasis".
func (n Node) KindName() string {
	if b := n.Block(); b != nil {
		return b.Kind().String()
	}
	if i := n.Inline(); i != nil {
		return i.Kind().String()
	}
	return ""
}
