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

import "sort"

// contentBuffer is the text of a leaf block's lines joined with '\n',
// with a mapping from buffer offsets back to source offsets.
// Container prefixes (block quote markers, list indentation)
// between lines are not part of the buffer.
type contentBuffer struct {
	text   []byte
	starts []int  // buffer offset of the beginning of each line
	src    []Span // source span of each line
	// next holds the source offset that follows each line's '\n'.
	next []int
}

// newContentBuffer builds a buffer from the given source lines.
// If trimEnd is true, trailing spaces and tabs are removed from the last line.
func newContentBuffer(source []byte, lines []Span, trimEnd bool) *contentBuffer {
	buf := &contentBuffer{
		starts: make([]int, 0, len(lines)),
		src:    make([]Span, 0, len(lines)),
		next:   make([]int, 0, len(lines)),
	}
	size := 0
	for _, line := range lines {
		size += line.Len() + 1
	}
	buf.text = make([]byte, 0, size)
	for i, line := range lines {
		if i > 0 {
			buf.text = append(buf.text, '\n')
			buf.next = append(buf.next, line.Start)
		}
		if trimEnd && i == len(lines)-1 {
			_, line.End = trimSpaceTab(source, line.Start, line.End)
			if line.End < line.Start {
				line.End = line.Start
			}
		}
		buf.starts = append(buf.starts, len(buf.text))
		buf.src = append(buf.src, line)
		buf.text = append(buf.text, source[line.Start:line.End]...)
	}
	return buf
}

// line returns the index of the line that contains the buffer offset pos.
// The '\n' at the end of a line belongs to that line.
func (buf *contentBuffer) line(pos int) int {
	i := sort.Search(len(buf.starts), func(i int) bool {
		return buf.starts[i] > pos
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// sourceOffset maps a buffer offset to a source offset.
// The newline after line i maps to the end of line i's content.
func (buf *contentBuffer) sourceOffset(pos int) int {
	if len(buf.src) == 0 {
		return 0
	}
	i := buf.line(pos)
	rel := pos - buf.starts[i]
	if rel > buf.src[i].Len() {
		rel = buf.src[i].Len()
	}
	return buf.src[i].Start + rel
}

// sourceSpan maps a half-open buffer span to a source span.
// An end that falls just past a '\n' maps to the start of the following line.
func (buf *contentBuffer) sourceSpan(start, end int) Span {
	s := buf.sourceOffset(start)
	var e int
	if i := buf.line(end); end > start && end == buf.starts[i] && i > 0 {
		e = buf.next[i-1]
	} else {
		e = buf.sourceOffset(end)
	}
	if e < s {
		e = s
	}
	return Span{Start: s, End: e}
}

// linesBefore returns the number of whole lines that precede the buffer offset pos.
// pos must be the start of a line or the end of the buffer.
func (buf *contentBuffer) linesBefore(pos int) int {
	if pos >= len(buf.text) {
		return len(buf.starts)
	}
	return buf.line(pos)
}
