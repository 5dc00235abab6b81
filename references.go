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
	"html"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// A type that implements ReferenceMatcher
// can be checked for the presence of link reference definitions.
type ReferenceMatcher interface {
	MatchReference(normalizedLabel string) bool
}

// LinkDefinition is the data of a [link reference definition].
//
// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
type LinkDefinition struct {
	Destination  string
	Title        string
	TitlePresent bool
}

// ReferenceMap is a mapping of [normalized labels] to link definitions.
//
// [normalized labels]: https://spec.commonmark.org/0.30/#matches
type ReferenceMap map[string]LinkDefinition

// MatchReference reports whether the normalized label appears in the map.
func (m ReferenceMap) MatchReference(normalizedLabel string) bool {
	_, ok := m[normalizedLabel]
	return ok
}

// NormalizeLabel returns the canonical form of a link or footnote label:
// surrounding whitespace is removed, internal whitespace is collapsed
// to a single space, and the result is case folded and NFC normalized.
// It returns the empty string for a label with no visible characters.
func NormalizeLabel(label string) string {
	fields := strings.FieldsFunc(label, func(c rune) bool {
		return c < utf8.RuneSelf && isSpaceTabOrLineEnding(byte(c))
	})
	if len(fields) == 0 {
		return ""
	}
	return norm.NFC.String(cases.Fold().String(strings.Join(fields, " ")))
}

// consumeLinkReferences removes any [link reference definitions]
// from the beginning of a paragraph and adds them to the reference map.
//
// [link reference definitions]: https://spec.commonmark.org/0.30/#link-reference-definitions
func (p *blockParser) consumeLinkReferences(id int) {
	b := &p.blocks[id]
	if len(b.lines) == 0 || peek(p.source, b.lines[0].Start) != '[' {
		return
	}
	buf := newContentBuffer(p.source, b.lines, false)
	pos := 0
	for peek(buf.text, pos) == '[' {
		label, def, n := parseLinkReferenceDefinition(buf.text[pos:])
		if n == 0 {
			break
		}
		pos += n
		if _, exists := p.refs[label]; !exists {
			p.refs[label] = def
		}
	}
	consumed := buf.linesBefore(pos)
	if consumed == 0 {
		return
	}
	b.lines = b.lines[consumed:]
	if len(b.lines) == 0 {
		return
	}
	b.span.Start = b.lines[0].Start
	if line, err := p.lines.Line(b.span.Start); err == nil {
		b.startLine = line
	}
}

// parseLinkReferenceDefinition parses a link reference definition
// at the beginning of text.
// n is the number of bytes consumed, including the final line ending,
// or zero if text does not start with a definition.
func parseLinkReferenceDefinition(text []byte) (label string, def LinkDefinition, n int) {
	labelEnd := parseLinkLabel(text, 0)
	if labelEnd < 0 || peek(text, labelEnd) != ':' {
		return "", LinkDefinition{}, 0
	}
	label = NormalizeLabel(string(text[1 : labelEnd-1]))
	if label == "" {
		return "", LinkDefinition{}, 0
	}
	pos := skipLinkSpace(text, labelEnd+1)
	dest, destEnd, ok := parseLinkDestination(text, pos)
	if !ok || destEnd == pos && peek(text, pos) != '<' {
		return "", LinkDefinition{}, 0
	}
	def.Destination = dest
	beforeTitle := destEnd
	pos = skipLinkSpace(text, destEnd)
	if pos != beforeTitle {
		if title, titleEnd, ok := parseLinkTitle(text, pos); ok {
			def.Title = title
			def.TitlePresent = true
			pos = titleEnd
		} else {
			pos = beforeTitle
		}
	}
	end, ok := spaceToLineEnd(text, pos)
	if !ok {
		if !def.TitlePresent {
			return "", LinkDefinition{}, 0
		}
		// The title is followed by other text,
		// but the destination alone may still end the line.
		def.Title = ""
		def.TitlePresent = false
		end, ok = spaceToLineEnd(text, beforeTitle)
		if !ok {
			return "", LinkDefinition{}, 0
		}
	}
	return label, def, end
}

// spaceToLineEnd skips spaces and tabs from pos.
// If the end of a line follows, spaceToLineEnd returns the offset
// just past the line ending.
func spaceToLineEnd(text []byte, pos int) (end int, ok bool) {
	for pos < len(text) && isSpaceOrTab(text[pos]) {
		pos++
	}
	switch {
	case pos >= len(text):
		return len(text), true
	case text[pos] == '\n':
		return pos + 1, true
	default:
		return pos, false
	}
}

// skipLinkSpace skips spaces and tabs, including up to one line ending.
func skipLinkSpace(text []byte, pos int) int {
	for pos < len(text) && isSpaceOrTab(text[pos]) {
		pos++
	}
	if pos < len(text) && text[pos] == '\n' {
		pos++
		for pos < len(text) && isSpaceOrTab(text[pos]) {
			pos++
		}
	}
	return pos
}

// maxLinkLabelLength is the maximum number of characters
// between the brackets of a [link label].
//
// [link label]: https://spec.commonmark.org/0.30/#link-label
const maxLinkLabelLength = 999

// parseLinkLabel parses a [link label] starting at text[pos].
// It returns the offset just past the closing bracket or -1.
//
// [link label]: https://spec.commonmark.org/0.30/#link-label
func parseLinkLabel(text []byte, pos int) int {
	if peek(text, pos) != '[' {
		return -1
	}
	for i := pos + 1; i < len(text) && i-pos-1 <= maxLinkLabelLength; i++ {
		switch text[i] {
		case '\\':
			if i+1 < len(text) && isASCIIPunctuation(text[i+1]) {
				i++
			}
		case '[':
			return -1
		case ']':
			return i + 1
		}
	}
	return -1
}

// maxLinkDestinationParens is the deepest nesting of unescaped parentheses
// permitted in a link destination.
const maxLinkDestinationParens = 32

// parseLinkDestination parses a [link destination] starting at text[pos].
// It returns the decoded destination and the offset just past it.
// Destinations nesting parentheses deeper than [maxLinkDestinationParens]
// are rejected.
//
// [link destination]: https://spec.commonmark.org/0.30/#link-destination
func parseLinkDestination(text []byte, pos int) (dest string, end int, ok bool) {
	if peek(text, pos) == '<' {
		for i := pos + 1; i < len(text); i++ {
			switch text[i] {
			case '\\':
				if i+1 < len(text) && isASCIIPunctuation(text[i+1]) {
					i++
				}
			case '\n', '<':
				return "", pos, false
			case '>':
				return unescapeString(text[pos+1 : i]), i + 1, true
			}
		}
		return "", pos, false
	}

	openParens := 0
	i := pos
loop:
	for i < len(text) {
		switch c := text[i]; {
		case c == '\\' && i+1 < len(text) && isASCIIPunctuation(text[i+1]):
			i += 2
		case c == '(':
			openParens++
			if openParens > maxLinkDestinationParens {
				return "", pos, false
			}
			i++
		case c == ')':
			if openParens < 1 {
				break loop
			}
			openParens--
			i++
		case c <= ' ' || c == 0x7f:
			break loop
		default:
			i++
		}
	}
	if i == pos && peek(text, i) != ')' {
		return "", pos, false
	}
	if openParens != 0 {
		return "", pos, false
	}
	return unescapeString(text[pos:i]), i, true
}

// parseLinkTitle parses a [link title] starting at text[pos].
// It returns the decoded title and the offset just past it.
//
// [link title]: https://spec.commonmark.org/0.30/#link-title
func parseLinkTitle(text []byte, pos int) (title string, end int, ok bool) {
	closer := peek(text, pos)
	switch closer {
	case '"', '\'':
	case '(':
		closer = ')'
	default:
		return "", pos, false
	}
	for i := pos + 1; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\\':
			if i+1 < len(text) && isASCIIPunctuation(text[i+1]) {
				i++
			}
		case c == closer:
			return unescapeString(text[pos+1 : i]), i + 1, true
		case closer == ')' && c == '(':
			return "", pos, false
		}
	}
	return "", pos, false
}

// unescapeString decodes [backslash escapes] and [entity references] in s.
//
// [backslash escapes]: https://spec.commonmark.org/0.30/#backslash-escapes
// [entity references]: https://spec.commonmark.org/0.30/#entity-and-numeric-character-references
func unescapeString(s []byte) string {
	i := 0
	for i < len(s) && s[i] != '\\' && s[i] != '&' {
		i++
	}
	if i >= len(s) {
		return string(s)
	}
	sb := new(strings.Builder)
	sb.Grow(len(s))
	sb.Write(s[:i])
	for i < len(s) {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && isASCIIPunctuation(s[i+1]) {
				sb.WriteByte(s[i+1])
				i += 2
				continue
			}
		case '&':
			if n := entityLength(s[i:]); n > 0 {
				if decoded := html.UnescapeString(string(s[i : i+n])); decoded != string(s[i:i+n]) {
					sb.WriteString(decoded)
					i += n
					continue
				}
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

// entityLength returns the length of the [entity or numeric character reference]
// at the start of s, or zero if s does not start with one.
// The reference is not checked against the list of HTML entity names.
//
// [entity or numeric character reference]: https://spec.commonmark.org/0.30/#entity-and-numeric-character-references
func entityLength(s []byte) int {
	if len(s) < 3 || s[0] != '&' {
		return 0
	}
	i := 1
	if s[i] == '#' {
		i++
		hex := i < len(s) && (s[i] == 'x' || s[i] == 'X')
		if hex {
			i++
		}
		digitStart := i
		for i < len(s) && (isASCIIDigit(s[i]) || hex && isHexLetter(s[i])) {
			i++
		}
		n := i - digitStart
		if n == 0 || hex && n > 6 || !hex && n > 7 {
			return 0
		}
	} else {
		if !isASCIILetter(s[i]) {
			return 0
		}
		for i < len(s) && isASCIIAlphanumeric(s[i]) {
			i++
		}
		if n := i - 1; n < 2 || n > 32 {
			return 0
		}
	}
	if i >= len(s) || s[i] != ';' {
		return 0
	}
	return i + 1
}

func isHexLetter(c byte) bool {
	return 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
