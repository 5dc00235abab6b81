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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// positionTestSource mixes LF, CRLF, and CR line endings
// with a character outside the Basic Multilingual Plane.
const positionTestSource = "a\U0001F600b\r\nc\rd\n"

func TestLineIndexResolve(t *testing.T) {
	idx := NewLineIndex([]byte(positionTestSource))
	if got, want := idx.LineCount(), 4; got != want {
		t.Errorf("idx.LineCount() = %d; want %d", got, want)
	}
	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{Line: 0, Character: 0, Offset: 0}},
		{1, Position{Line: 0, Character: 1, Offset: 1}},
		{2, Position{Line: 0, Character: 1, Offset: 2}}, // inside the emoji
		{5, Position{Line: 0, Character: 3, Offset: 5}},
		{6, Position{Line: 0, Character: 4, Offset: 6}},
		{7, Position{Line: 0, Character: 5, Offset: 7}}, // between CR and LF
		{8, Position{Line: 1, Character: 0, Offset: 8}},
		{9, Position{Line: 1, Character: 1, Offset: 9}},
		{10, Position{Line: 2, Character: 0, Offset: 10}},
		{12, Position{Line: 3, Character: 0, Offset: 12}},
	}
	for _, test := range tests {
		got, err := idx.Resolve(test.offset)
		if err != nil {
			t.Errorf("idx.Resolve(%d): %v", test.offset, err)
			continue
		}
		if got != test.want {
			t.Errorf("idx.Resolve(%d) = %v; want %v", test.offset, got, test.want)
		}
	}

	for _, offset := range []int{-1, len(positionTestSource) + 1} {
		if got, err := idx.Resolve(offset); !errors.Is(err, ErrOffsetOutOfRange) {
			t.Errorf("idx.Resolve(%d) = %v, %v; want _, %v", offset, got, err, ErrOffsetOutOfRange)
		}
	}
}

func TestLineIndexOffset(t *testing.T) {
	idx := NewLineIndex([]byte(positionTestSource))
	tests := []struct {
		line      int
		character int
		want      int
	}{
		{-1, 0, 0},
		{0, 0, 0},
		{0, 1, 1},
		{0, 2, 1}, // between surrogates
		{0, 3, 5},
		{0, 99, 6},
		{1, 0, 8},
		{2, 1, 11},
		{9, 0, 12},
	}
	for _, test := range tests {
		pos := Position{Line: test.line, Character: test.character}
		if got := idx.Offset(pos); got != test.want {
			t.Errorf("idx.Offset(%d:%d) = %d; want %d", test.line, test.character, got, test.want)
		}
	}
}

func TestLineIndexSurrogatePairs(t *testing.T) {
	// Each emoji is 4 bytes in UTF-8 and 2 code units in UTF-16.
	const source = "x\U0001F600\U0001F601y"
	idx := NewLineIndex([]byte(source))
	for i, want := range []Position{
		{Line: 0, Character: 1, Offset: 1},
		{Line: 0, Character: 3, Offset: 5},
		{Line: 0, Character: 5, Offset: 9},
		{Line: 0, Character: 6, Offset: 10},
	} {
		got, err := idx.Resolve(want.Offset)
		if err != nil {
			t.Errorf("#%d: idx.Resolve(%d): %v", i, want.Offset, err)
			continue
		}
		if got != want {
			t.Errorf("#%d: idx.Resolve(%d) = %v; want %v", i, want.Offset, got, want)
		}
		if back := idx.Offset(got); back != want.Offset {
			t.Errorf("#%d: idx.Offset(%v) = %d; want %d", i, got, back, want.Offset)
		}
	}
}

func TestLineIndexLineCount(t *testing.T) {
	tests := []struct {
		source string
		want   int
	}{
		{"", 1},
		{"a", 1},
		{"a\n", 2},
		{"a\r\n", 2},
		{"a\r\rb", 3},
	}
	for _, test := range tests {
		if got := NewLineIndex([]byte(test.source)).LineCount(); got != test.want {
			t.Errorf("NewLineIndex(%q).LineCount() = %d; want %d", test.source, got, test.want)
		}
	}
}

func TestRangeOf(t *testing.T) {
	idx := NewLineIndex([]byte("ab\ncd"))
	got, err := idx.RangeOf(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := Range{
		Start: Position{Line: 0, Character: 1, Offset: 1},
		End:   Position{Line: 1, Character: 1, Offset: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("idx.RangeOf(1, 4) (-want +got):\n%s", diff)
	}
	if !want.Contains(Range{Start: want.Start, End: want.Start}) {
		t.Errorf("%v.Contains(empty start range) = false; want true", want)
	}

	if _, err := idx.RangeOf(4, 1); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("idx.RangeOf(4, 1) error = %v; want %v", err, ErrOffsetOutOfRange)
	}
}

func TestErrors(t *testing.T) {
	limit := &LimitError{Limit: "nesting depth", Max: 3, Offset: 10}
	if got, want := limit.Error(), "nesting depth exceeds 3 at offset 10"; got != want {
		t.Errorf("limit.Error() = %q; want %q", got, want)
	}
	if !errors.Is(limit, ErrResourceLimit) {
		t.Errorf("errors.Is(%v, ErrResourceLimit) = false; want true", limit)
	}

	internal := internalError("map span", ErrOffsetOutOfRange)
	if !errors.Is(internal, ErrInternal) {
		t.Errorf("errors.Is(%v, ErrInternal) = false; want true", internal)
	}
	if !errors.Is(internal, ErrOffsetOutOfRange) {
		t.Errorf("errors.Is(%v, ErrOffsetOutOfRange) = false; want true", internal)
	}
}
