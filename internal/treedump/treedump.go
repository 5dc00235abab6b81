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

// Package treedump writes a stable, indented textual form of a parsed document.
// Each node is written on its own line as its kind and byte span,
// followed by kind-specific details:
//
//	root [0,8)
//	  paragraph [0,7)
//	    emphasis [0,3)
//	      text [1,2) "a"
package treedump

import (
	"fmt"
	"io"
	"strings"

	"go4.org/bytereplacer"
	"zombiezen.com/go/macaroni"
)

// Options is the set of optional parameters to [Write].
type Options struct {
	// If Positions is true, nodes are labeled with line:character ranges
	// instead of byte spans.
	Positions bool
	// If Style is not nil, it is applied to each node's kind name.
	Style func(kind string) string
}

var textEscaper = bytereplacer.New(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\x00", `\0`,
)

// Write writes the tree of doc to w.
func Write(w io.Writer, doc *macaroni.Document, opts *Options) error {
	if opts == nil {
		opts = new(Options)
	}
	ew := &errWriter{w: w}
	macaroni.Walk(doc.Root().AsNode(), &macaroni.WalkOptions{
		Pre: func(c *macaroni.Cursor) bool {
			writeNode(ew, doc, c, opts)
			return ew.err == nil
		},
		Post: func(c *macaroni.Cursor) bool {
			return ew.err == nil
		},
	})
	return ew.err
}

// String returns the tree of doc with default options.
func String(doc *macaroni.Document) string {
	sb := new(strings.Builder)
	Write(sb, doc, nil)
	return sb.String()
}

func writeNode(w *errWriter, doc *macaroni.Document, c *macaroni.Cursor, opts *Options) {
	n := c.Node()
	w.WriteString(strings.Repeat("  ", c.Depth()))
	kind := n.KindName()
	if opts.Style != nil {
		kind = opts.Style(kind)
	}
	w.WriteString(kind)
	w.WriteString(" ")
	if opts.Positions {
		w.WriteString(n.Range().String())
	} else {
		w.WriteString(n.Span().String())
	}
	if b := n.Block(); b != nil {
		writeBlockDetails(w, b)
	} else if in := n.Inline(); in != nil {
		writeInlineDetails(w, doc.Source(), in)
	}
	w.WriteString("\n")
}

func writeBlockDetails(w *errWriter, b *macaroni.Block) {
	switch b.Kind() {
	case macaroni.ATXHeadingKind, macaroni.SetextHeadingKind:
		fmt.Fprintf(w, " level=%d", b.HeadingLevel())
	case macaroni.ListKind:
		if b.IsOrdered() {
			fmt.Fprintf(w, " ordered start=%d", b.ListStart())
		}
		if b.IsTight() {
			w.WriteString(" tight")
		}
	case macaroni.FencedCodeBlockKind:
		if info := b.InfoString(); info != "" {
			w.WriteString(" info=")
			writeQuoted(w, info)
		}
	case macaroni.FootnoteDefinitionKind:
		w.WriteString(" label=")
		writeQuoted(w, b.FootnoteLabel())
	}
	if n := b.LineCount(); n > 0 && b.Kind() != macaroni.ParagraphKind && b.Kind() != macaroni.SetextHeadingKind {
		fmt.Fprintf(w, " lines=%d", n)
	}
}

func writeInlineDetails(w *errWriter, source []byte, in *macaroni.Inline) {
	switch in.Kind() {
	case macaroni.TextKind, macaroni.CodeSpanKind, macaroni.RawHTMLKind:
		w.WriteString(" ")
		writeQuoted(w, in.Text(source))
	case macaroni.LinkKind, macaroni.ImageKind, macaroni.AutolinkKind:
		w.WriteString(" dest=")
		writeQuoted(w, in.LinkDestination())
		if title, ok := in.LinkTitle(); ok {
			w.WriteString(" title=")
			writeQuoted(w, title)
		}
	case macaroni.FootnoteReferenceKind:
		w.WriteString(" label=")
		writeQuoted(w, in.FootnoteLabel())
	case macaroni.CitationKind:
		c, _ := in.Citation()
		w.WriteString(" key=")
		writeQuoted(w, c.Key)
		if c.Prefix != "" {
			w.WriteString(" prefix=")
			writeQuoted(w, c.Prefix)
		}
		if c.Locator != "" {
			w.WriteString(" locator=")
			writeQuoted(w, c.Locator)
		}
		if c.SuppressAuthor {
			w.WriteString(" suppress-author")
		}
		if c.InText {
			w.WriteString(" in-text")
		}
	}
}

func writeQuoted(w *errWriter, s string) {
	w.WriteString(`"`)
	w.Write(textEscaper.Replace([]byte(s)))
	w.WriteString(`"`)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = w.w.Write(p)
	return n, w.err
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	return n, w.err
}

// Lines splits a dump into lines without trailing newlines,
// ignoring a final empty line.
func Lines(dump string) []string {
	lines := strings.Split(dump, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
