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
	"strings"
	"unicode"
	"unicode/utf8"
)

// parseFootnoteLabel parses a footnote label like "[^1]" at the start of b.
// It returns the offset just past the closing bracket or -1.
// Footnote labels may not contain whitespace or unescaped brackets.
func parseFootnoteLabel(b []byte) int {
	if !hasBytePrefix(b, "[^") {
		return -1
	}
	for i := 2; i < len(b) && i-2 <= maxLinkLabelLength; i++ {
		switch c := b[i]; {
		case c == ']':
			if i == 2 {
				return -1
			}
			return i + 1
		case c == '[' || isSpaceTabOrLineEnding(c):
			return -1
		case c == '\\' && i+1 < len(b) && isASCIIPunctuation(b[i+1]):
			i++
		}
	}
	return -1
}

// parseFootnoteReference parses a reference to a defined footnote
// at the current position.
// References to undefined footnotes are left for link processing.
func (p *inlineParser) parseFootnoteReference() bool {
	if !p.opts.footnotesEnabled() {
		return false
	}
	start := p.pos
	n := parseFootnoteLabel(p.text[start:])
	if n < 0 {
		return false
	}
	label := string(p.text[start+2 : start+n-1])
	if _, defined := p.footnotes[NormalizeLabel(label)]; !defined {
		return false
	}
	p.addLeaf(&inlineNode{
		kind:  FootnoteReferenceKind,
		start: start,
		end:   start + n,
		label: label,
	})
	return true
}

// Citation is the data of a [CitationKind] node.
type Citation struct {
	// Key is the citation key without the leading '@'.
	Key string
	// Prefix is the text before the key in a bracketed citation.
	Prefix string
	// Locator is the text after the key, like a page number.
	Locator string
	// SuppressAuthor is true if the key was written as "-@key".
	SuppressAuthor bool
	// InText is true for citations written outside brackets,
	// like "@key [p. 4]".
	InText bool
}

// A type that implements CitationMatcher
// determines which citation keys are recognized.
type CitationMatcher interface {
	MatchCitation(key string) bool
}

// CitationKeySet is a set of citation keys.
// It implements [CitationMatcher].
type CitationKeySet map[string]struct{}

// NewCitationKeySet returns a set that contains the given keys.
func NewCitationKeySet(keys ...string) CitationKeySet {
	set := make(CitationKeySet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// MatchCitation reports whether key is in the set.
func (set CitationKeySet) MatchCitation(key string) bool {
	_, ok := set[key]
	return ok
}

func (p *inlineParser) matchCitation(key string) bool {
	return p.opts.CitationMatcher == nil || p.opts.CitationMatcher.MatchCitation(key)
}

// parseBracketedCitation parses a group of citations
// like "[see @doe99, p. 3; -@smith04]" at the current position.
// Each citation in the group becomes a separate node.
func (p *inlineParser) parseBracketedCitation() bool {
	if !p.opts.citationsEnabled() {
		return false
	}
	start := p.pos
	close := findCitationBracketEnd(p.text, start)
	if close < 0 {
		return false
	}
	if c := peek(p.text, close+1); c == '(' || c == '[' {
		// Looks like a link.
		return false
	}
	content := p.text[start+1 : close]
	if bytes.IndexByte(content, '@') < 0 {
		return false
	}

	var nodes []*inlineNode
	partStart := start + 1
	for partStart <= close {
		partEnd := partStart
		for partEnd < close && p.text[partEnd] != ';' {
			if p.text[partEnd] == '\\' && partEnd+1 < close {
				partEnd++
			}
			partEnd++
		}
		c, ok := parseCitationPart(p.text[partStart:partEnd])
		if !ok || !p.matchCitation(c.Key) {
			return false
		}
		nodeStart := partStart
		if len(nodes) == 0 {
			nodeStart = start
		}
		nodes = append(nodes, &inlineNode{
			kind:     CitationKind,
			start:    nodeStart,
			end:      partEnd + 1, // includes ';' or ']'
			citation: &c,
		})
		partStart = partEnd + 1
	}
	p.flushText(start)
	for _, node := range nodes {
		p.append(node)
	}
	p.pos = close + 1
	p.textStart = p.pos
	return true
}

// findCitationBracketEnd returns the offset of the ']'
// that closes the '[' at text[start] or -1.
// Citation groups may not contain nested brackets.
func findCitationBracketEnd(text []byte, start int) int {
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			if i+1 < len(text) && isASCIIPunctuation(text[i+1]) {
				i++
			}
		case '[':
			return -1
		case ']':
			return i
		}
	}
	return -1
}

// parseCitationPart parses a single "prefix -@key, locator" item
// from a bracketed citation group.
func parseCitationPart(part []byte) (Citation, bool) {
	var c Citation
	at := -1
	for i := 0; i < len(part); i++ {
		if part[i] != '@' {
			continue
		}
		before := byte(' ')
		if i > 0 {
			before = part[i-1]
		}
		if before == '-' && (i == 1 || isSpaceTabOrLineEnding(part[i-2])) {
			c.SuppressAuthor = true
			at = i
			break
		}
		if isSpaceTabOrLineEnding(before) {
			at = i
			break
		}
	}
	if at < 0 {
		return Citation{}, false
	}
	keyEnd := parseCitationKey(part, at+1)
	if keyEnd == at+1 {
		return Citation{}, false
	}
	c.Key = string(part[at+1 : keyEnd])
	prefixEnd := at
	if c.SuppressAuthor {
		prefixEnd--
	}
	c.Prefix = citationText(part[:prefixEnd])
	suffix := bytes.TrimSpace(part[keyEnd:])
	suffix = bytes.TrimPrefix(suffix, []byte(","))
	c.Locator = citationText(suffix)
	return c, true
}

// citationText decodes escapes in a prefix or locator
// and collapses its whitespace.
func citationText(b []byte) string {
	return strings.Join(strings.Fields(unescapeString(b)), " ")
}

// parseCitationKey returns the end of the citation key that starts at b[start].
// A key starts with a letter, digit, or underscore.
// Internal punctuation is allowed when followed by a key character.
// If there is no key at start, parseCitationKey returns start.
func parseCitationKey(b []byte, start int) int {
	r, size := utf8.DecodeRune(b[start:])
	if start >= len(b) || !isCitationKeyChar(r) {
		return start
	}
	i := start + size
	for i < len(b) {
		r, size := utf8.DecodeRune(b[i:])
		if isCitationKeyChar(r) {
			i += size
			continue
		}
		if strings.ContainsRune(":.#$%&-+?<>~/", r) {
			if next, _ := utf8.DecodeRune(b[i+size:]); i+size < len(b) && isCitationKeyChar(next) {
				i += size
				continue
			}
		}
		break
	}
	return i
}

func isCitationKeyChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parseInTextCitation parses a citation like "@doe99" or "@doe99 [p. 33]"
// at the current position.
func (p *inlineParser) parseInTextCitation() bool {
	if !p.opts.citationsEnabled() {
		return false
	}
	start := p.pos
	if start > 0 {
		// Avoid email addresses.
		if r, _ := utf8.DecodeLastRune(p.text[:start]); isCitationKeyChar(r) {
			return false
		}
	}
	keyEnd := parseCitationKey(p.text, start+1)
	if keyEnd == start+1 {
		return false
	}
	c := &Citation{
		Key:    string(p.text[start+1 : keyEnd]),
		InText: true,
	}
	if !p.matchCitation(c.Key) {
		return false
	}
	end := keyEnd
	if peek(p.text, keyEnd) == ' ' && peek(p.text, keyEnd+1) == '[' {
		close := findCitationBracketEnd(p.text, keyEnd+1)
		if close >= 0 {
			locator := p.text[keyEnd+2 : close]
			next := peek(p.text, close+1)
			if bytes.IndexByte(locator, '@') < 0 && next != '(' && next != '[' {
				c.Locator = citationText(locator)
				end = close + 1
			}
		}
	}
	p.addLeaf(&inlineNode{
		kind:     CitationKind,
		start:    start,
		end:      end,
		citation: c,
	})
	return true
}
