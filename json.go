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

import (
	"encoding/json"
	"fmt"
	"io"
)

// Elements is the flattened wire form of a [Document].
// Element indices are the same as the node IDs returned by [Node.ID].
type Elements struct {
	BlockElements  []BlockElement  `json:"blockElements"`
	InlineElements []InlineElement `json:"inlineElements"`
}

// BlockElement is the wire form of a [Block].
// The root element carries only its type.
type BlockElement struct {
	Type         string  `json:"type"`
	Range        *Range  `json:"range,omitempty"`
	Parent       *int    `json:"parent,omitempty"`
	Lines        []Range `json:"lines,omitempty"`
	ContentRange *Range  `json:"contentRange,omitempty"`

	Level     int    `json:"level,omitempty"`
	Ordered   bool   `json:"ordered,omitempty"`
	Start     *int   `json:"start,omitempty"`
	Tight     *bool  `json:"tight,omitempty"`
	Marker    string `json:"marker,omitempty"`
	Info      string `json:"info,omitempty"`
	InfoRange *Range `json:"infoRange,omitempty"`
	Label     string `json:"label,omitempty"`
}

// InlineElement is the wire form of an [Inline].
// Block is the index of the leaf block that holds the inline.
// Parent is the index of the enclosing inline
// and is omitted for inlines directly inside the block.
type InlineElement struct {
	Type   string `json:"type"`
	Range  Range  `json:"range"`
	Block  int    `json:"block"`
	Parent *int   `json:"parent,omitempty"`

	Text        string  `json:"text,omitempty"`
	Literal     string  `json:"literal,omitempty"`
	Destination *string `json:"destination,omitempty"`
	Title       *string `json:"title,omitempty"`
	Reference   string  `json:"reference,omitempty"`
	Label       string  `json:"label,omitempty"`

	Key            string `json:"key,omitempty"`
	Prefix         string `json:"prefix,omitempty"`
	Locator        string `json:"locator,omitempty"`
	SuppressAuthor bool   `json:"suppressAuthor,omitempty"`
	InText         bool   `json:"inText,omitempty"`
}

// Elements returns the document flattened into parallel lists
// of block and inline elements in document order.
func (doc *Document) Elements() *Elements {
	elems := &Elements{
		BlockElements:  make([]BlockElement, 0, len(doc.blocks)),
		InlineElements: make([]InlineElement, 0, len(doc.inlines)),
	}
	for i := range doc.blocks {
		elems.BlockElements = append(elems.BlockElements, doc.blockElement(&doc.blocks[i]))
	}
	owner := make([]int, len(doc.inlines))
	for i := range doc.inlines {
		in := &doc.inlines[i]
		elem := doc.inlineElement(in)
		if p := in.parent; p.typ == nodeTypeBlock {
			owner[i] = p.ID()
		} else {
			owner[i] = owner[p.ID()]
			elem.Parent = intPtr(p.ID())
		}
		elem.Block = owner[i]
		elems.InlineElements = append(elems.InlineElements, elem)
	}
	return elems
}

func (doc *Document) blockElement(b *Block) BlockElement {
	elem := BlockElement{Type: b.kind.String()}
	if b.kind == RootKind {
		return elem
	}
	rng := b.rng
	elem.Range = &rng
	elem.Parent = intPtr(b.parent.ID())
	if len(b.lineRanges) > 0 {
		elem.Lines = b.lineRanges
	}
	switch b.kind {
	case ATXHeadingKind, SetextHeadingKind:
		elem.Level = b.level
		if b.content.IsValid() {
			crng := b.contentRange
			elem.ContentRange = &crng
		}
	case ListKind, ListItemKind:
		elem.Ordered = b.list.ordered
		if b.list.ordered {
			elem.Start = intPtr(b.list.start)
		}
		elem.Marker = string(b.ListMarker())
		if b.kind == ListKind {
			tight := b.list.tight
			elem.Tight = &tight
		}
	case FencedCodeBlockKind:
		elem.Info = b.info
		if b.infoSpan.IsValid() && b.infoSpan.Len() > 0 {
			irng := doc.lines.mustRange(b.infoSpan)
			elem.InfoRange = &irng
		}
	case FootnoteDefinitionKind:
		elem.Label = b.label
	}
	return elem
}

func (doc *Document) inlineElement(in *Inline) InlineElement {
	elem := InlineElement{
		Type:  in.kind.String(),
		Range: in.rng,
	}
	switch in.kind {
	case TextKind:
		elem.Text = in.Text(doc.source)
	case CodeSpanKind, RawHTMLKind:
		elem.Literal = in.literal
	case AutolinkKind:
		elem.Literal = in.literal
		elem.Destination = stringPtr(in.destination)
	case LinkKind, ImageKind:
		elem.Destination = stringPtr(in.destination)
		if in.titlePresent {
			elem.Title = stringPtr(in.title)
		}
		elem.Reference = in.label
	case FootnoteReferenceKind:
		elem.Label = in.label
	case CitationKind:
		c := in.citation
		elem.Key = c.Key
		elem.Prefix = c.Prefix
		elem.Locator = c.Locator
		elem.SuppressAuthor = c.SuppressAuthor
		elem.InText = c.InText
	}
	return elem
}

// MarshalJSON encodes the document in its flattened wire form.
func (doc *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(doc.Elements())
}

// Request is the body of a parse request.
type Request struct {
	Source string `json:"source"`
}

// DecodeRequest reads a JSON-encoded [Request] from r.
func DecodeRequest(r io.Reader) (*Request, error) {
	req := new(Request)
	dec := json.NewDecoder(r)
	if err := dec.Decode(req); err != nil {
		return nil, fmt.Errorf("decode parse request: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode parse request: trailing data after request")
	}
	return req, nil
}

func intPtr(i int) *int          { return &i }
func stringPtr(s string) *string { return &s }
