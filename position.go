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
	"fmt"
	"sort"
	"unicode/utf8"
)

// Position is a location in a document's source.
// Line and Character follow the Language Server Protocol convention:
// both are zero-based and Character counts UTF-16 code units
// from the start of the line.
// Offset is the absolute byte offset into the source.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
	Offset    int `json:"offset"`
}

// Less reports whether pos comes before other in the document.
func (pos Position) Less(other Position) bool {
	return pos.Offset < other.Offset
}

func (pos Position) String() string {
	return fmt.Sprintf("%d:%d(%d)", pos.Line, pos.Character, pos.Offset)
}

// Range is a pair of positions in a document's source.
// End is exclusive and never comes before Start.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Span returns the byte offsets of the range.
func (r Range) Span() Span {
	return Span{Start: r.Start.Offset, End: r.End.Offset}
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return r.Start.Offset <= other.Start.Offset && other.End.Offset <= r.End.Offset
}

func (r Range) String() string {
	return fmt.Sprintf("[%v,%v)", r.Start, r.End)
}

// Span is a half-open interval of byte offsets [Start, End)
// into a document's source.
type Span struct {
	Start int
	End   int
}

// NullSpan returns an invalid span.
func NullSpan() Span {
	return Span{Start: -1, End: -1}
}

// IsValid reports whether the span bounds are well-formed.
func (span Span) IsValid() bool {
	return span.Start >= 0 && span.End >= span.Start
}

// Len returns the number of bytes in the span.
func (span Span) Len() int {
	return span.End - span.Start
}

func (span Span) String() string {
	return fmt.Sprintf("[%d,%d)", span.Start, span.End)
}

// LineIndex maps byte offsets in a source to [Position] values.
// A LineIndex is immutable after construction
// and safe to use from multiple goroutines.
type LineIndex struct {
	size  int
	lines []lineInfo
}

type lineInfo struct {
	start   int // offset of the first byte of the line
	end     int // offset of the line terminator (or end of source)
	next    int // offset of the first byte of the following line
	utf16   int // width of the line's content in UTF-16 code units
	widened []widthMark
}

// widthMark records a rune whose UTF-8 length differs from its UTF-16 length.
// delta is the cumulative difference (bytes minus UTF-16 units)
// for the line up to and including this rune.
type widthMark struct {
	start int // offset of the rune relative to the line start
	size  int // size of the rune in bytes
	delta int
}

// NewLineIndex scans source once and builds its line table.
// [Line terminators] are LF, CRLF, or CR.
// A source with n line terminators has n+1 lines.
//
// [Line terminators]: https://spec.commonmark.org/0.30/#line-ending
func NewLineIndex(source []byte) *LineIndex {
	idx := &LineIndex{size: len(source)}
	line := lineInfo{}
	delta := 0
	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '\n' || c == '\r':
			line.end = i
			i++
			if c == '\r' && i < len(source) && source[i] == '\n' {
				i++
			}
			line.next = i
			line.utf16 = line.end - line.start - delta
			idx.lines = append(idx.lines, line)
			line = lineInfo{start: i}
			delta = 0
		case c < utf8.RuneSelf:
			i++
		default:
			r, size := utf8.DecodeRune(source[i:])
			units := 1
			if r >= 0x10000 {
				units = 2
			}
			if size != units {
				delta += size - units
				line.widened = append(line.widened, widthMark{
					start: i - line.start,
					size:  size,
					delta: delta,
				})
			}
			i += size
		}
	}
	line.end = len(source)
	line.next = len(source)
	line.utf16 = line.end - line.start - delta
	idx.lines = append(idx.lines, line)
	return idx
}

// Len returns the length in bytes of the indexed source.
func (idx *LineIndex) Len() int {
	return idx.size
}

// LineCount returns the number of lines in the source.
// It is always at least 1.
func (idx *LineIndex) LineCount() int {
	return len(idx.lines)
}

// LineSpan returns the span of the given zero-based line's content,
// excluding the line terminator.
func (idx *LineIndex) LineSpan(line int) Span {
	if line < 0 || line >= len(idx.lines) {
		return NullSpan()
	}
	l := &idx.lines[line]
	return Span{Start: l.start, End: l.end}
}

// nextLineStart returns the offset of the start of the line after line,
// or the source length if line is the last line.
func (idx *LineIndex) nextLineStart(line int) int {
	return idx.lines[line].next
}

// Line returns the zero-based line number containing the given offset.
// Offsets inside a line terminator belong to the line it terminates.
func (idx *LineIndex) Line(offset int) (int, error) {
	if offset < 0 || offset > idx.size {
		return 0, fmt.Errorf("line for offset %d: %w (source is %d bytes)", offset, ErrOffsetOutOfRange, idx.size)
	}
	i := sort.Search(len(idx.lines), func(i int) bool {
		return idx.lines[i].next > offset
	})
	if i >= len(idx.lines) {
		i = len(idx.lines) - 1
	}
	return i, nil
}

// Resolve converts a byte offset into a [Position].
// It returns an error wrapping [ErrOffsetOutOfRange]
// if offset is outside [0, Len()].
// Offsets that fall inside a multi-byte character
// resolve to the character's first code unit.
func (idx *LineIndex) Resolve(offset int) (Position, error) {
	lineno, err := idx.Line(offset)
	if err != nil {
		return Position{}, err
	}
	l := &idx.lines[lineno]
	rel := offset - l.start
	if offset > l.end {
		// Inside the line terminator: each byte is one code unit.
		return Position{
			Line:      lineno,
			Character: l.utf16 + (offset - l.end),
			Offset:    offset,
		}, nil
	}
	return Position{
		Line:      lineno,
		Character: rel - l.deltaBefore(rel),
		Offset:    offset,
	}, nil
}

// deltaBefore returns the difference between the number of bytes
// and the number of UTF-16 code units in the first rel bytes of the line.
func (l *lineInfo) deltaBefore(rel int) int {
	// Find the first wide rune that does not end at or before rel.
	i := sort.Search(len(l.widened), func(i int) bool {
		m := l.widened[i]
		return m.start+m.size > rel
	})
	delta := 0
	if i > 0 {
		delta = l.widened[i-1].delta
	}
	if i < len(l.widened) && l.widened[i].start < rel {
		// Offset points into the middle of a rune.
		delta += rel - l.widened[i].start
	}
	return delta
}

// Offset converts the Line and Character of pos into a byte offset,
// ignoring pos.Offset.
// Characters past the end of the line clamp to the line's end
// and lines past the end of the source clamp to the end of the source.
func (idx *LineIndex) Offset(pos Position) int {
	line, character := pos.Line, pos.Character
	if line < 0 {
		return 0
	}
	if line >= len(idx.lines) {
		return idx.size
	}
	l := &idx.lines[line]
	if character <= 0 {
		return l.start
	}
	if character >= l.utf16 {
		return l.end
	}
	// Binary search for the largest rel whose column is <= character.
	i := sort.Search(len(l.widened), func(i int) bool {
		m := l.widened[i]
		return m.start-(m.delta-(m.size-units(m.size))) > character
	})
	delta := 0
	if i > 0 {
		delta = l.widened[i-1].delta
		m := l.widened[i-1]
		// A character index inside a surrogate pair or wide rune
		// rounds down to the rune's start.
		col := m.start - (m.delta - (m.size - units(m.size)))
		if character < col+units(m.size) {
			return l.start + m.start
		}
	}
	return l.start + character + delta
}

func units(size int) int {
	if size == 4 {
		return 2
	}
	return 1
}

// RangeOf converts a span of byte offsets into a [Range].
// It is the position mapper used to stamp every node in a [Document].
func (idx *LineIndex) RangeOf(start, end int) (Range, error) {
	if end < start {
		return Range{}, fmt.Errorf("range of [%d,%d): %w", start, end, ErrOffsetOutOfRange)
	}
	s, err := idx.Resolve(start)
	if err != nil {
		return Range{}, err
	}
	e, err := idx.Resolve(end)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: s, End: e}, nil
}

// mustRange is like RangeOf but treats failures as internal invariant violations.
func (idx *LineIndex) mustRange(span Span) Range {
	r, err := idx.RangeOf(span.Start, span.End)
	if err != nil {
		panic(internalError("map span "+span.String(), err))
	}
	return r
}
