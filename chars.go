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
	"bytes"
	"unicode"
)

// isASCIIPunctuation reports whether c is an [ASCII punctuation character].
//
// [ASCII punctuation character]: https://spec.commonmark.org/0.30/#ascii-punctuation-character
func isASCIIPunctuation(c byte) bool {
	return '!' <= c && c <= '/' ||
		':' <= c && c <= '@' ||
		'[' <= c && c <= '`' ||
		'{' <= c && c <= '~'
}

// isUnicodePunctuation reports whether c is a [Unicode punctuation character].
//
// [Unicode punctuation character]: https://spec.commonmark.org/0.31.2/#unicode-punctuation-character
func isUnicodePunctuation(c rune) bool {
	if c < 0x80 {
		return isASCIIPunctuation(byte(c))
	}
	return unicode.IsPunct(c) || unicode.IsSymbol(c)
}

// isUnicodeWhitespace reports whether c is a [Unicode whitespace character].
//
// [Unicode whitespace character]: https://spec.commonmark.org/0.30/#unicode-whitespace-character
func isUnicodeWhitespace(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return unicode.Is(unicode.Zs, c)
}

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}

func isSpaceTabOrLineEnding(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isASCIIAlphanumeric(c byte) bool {
	return isASCIILetter(c) || isASCIIDigit(c)
}

func hasBytePrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

func contains(b []byte, search string) bool {
	return bytes.Contains(b, []byte(search))
}

// peek returns the byte at b[i] or zero if i is out of bounds.
func peek(b []byte, i int) byte {
	if i < 0 || i >= len(b) {
		return 0
	}
	return b[i]
}

func isBlankLine(line []byte) bool {
	for _, b := range line {
		if !isSpaceTabOrLineEnding(b) {
			return false
		}
	}
	return true
}

// isEndEscaped reports whether s ends with an odd number of backslashes.
func isEndEscaped(s []byte) bool {
	n := 0
	for ; n < len(s); n++ {
		if s[len(s)-n-1] != '\\' {
			break
		}
	}
	return n%2 == 1
}

// trimSpaceTab returns the subslice bounds of b[start:end]
// with leading and trailing spaces and tabs removed.
func trimSpaceTab(b []byte, start, end int) (int, int) {
	for start < end && isSpaceOrTab(b[start]) {
		start++
	}
	for end > start && isSpaceOrTab(b[end-1]) {
		end--
	}
	return start, end
}
