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
	"bytes"
	"strings"

	"golang.org/x/net/html/atom"
)

// parseHTMLTag parses an [HTML tag] starting at the '<' at text[pos].
// It returns the offset just past the tag or -1.
// Tags may span multiple lines.
//
// [HTML tag]: https://spec.commonmark.org/0.30/#raw-html
func parseHTMLTag(text []byte, pos int) (end int) {
	const (
		cdataPrefix = "[CDATA["
		cdataSuffix = "]]>"
	)

	if peek(text, pos) != '<' || pos+1 >= len(text) {
		return -1
	}
	rest := text[pos+1:]
	switch rest[0] {
	case '?':
		// Processing instructions.
		i := bytes.Index(rest[1:], []byte("?>"))
		if i < 0 {
			return -1
		}
		return pos + 1 + 1 + i + len("?>")
	case '!':
		rest = rest[1:]
		switch {
		case len(rest) > 0 && isASCIILetter(rest[0]):
			// Declaration.
			i := bytes.IndexByte(rest, '>')
			if i < 0 {
				return -1
			}
			return pos + 2 + i + 1
		case hasBytePrefix(rest, "--"):
			// Comment.
			body := rest[2:]
			if hasBytePrefix(body, ">") || hasBytePrefix(body, "->") {
				return -1
			}
			i := bytes.Index(body, []byte("--"))
			if i < 0 || !hasBytePrefix(body[i:], "-->") {
				// Either unterminated or contains "--" before the end.
				return -1
			}
			return pos + 2 + 2 + i + len("-->")
		case hasBytePrefix(rest, cdataPrefix):
			// CDATA.
			i := bytes.Index(rest[len(cdataPrefix):], []byte(cdataSuffix))
			if i < 0 {
				return -1
			}
			return pos + 2 + len(cdataPrefix) + i + len(cdataSuffix)
		default:
			return -1
		}
	case '/':
		return parseHTMLClosingTag(text, pos+1)
	default:
		return parseHTMLOpenTag(text, pos+1)
	}
}

// parseHTMLOpenTag parses an [open tag] sans the leading '<'.
//
// [open tag]: https://spec.commonmark.org/0.30/#open-tag
func parseHTMLOpenTag(text []byte, pos int) (end int) {
	pos = parseHTMLTagName(text, pos)
	if pos < 0 {
		return -1
	}
	for {
		beforeSpace := pos
		pos = skipLinkSpace(text, pos)
		switch peek(text, pos) {
		case '/':
			if peek(text, pos+1) != '>' {
				return -1
			}
			return pos + 2
		case '>':
			return pos + 1
		}
		if pos == beforeSpace {
			return -1
		}
		pos = parseHTMLAttribute(text, pos)
		if pos < 0 {
			return -1
		}
	}
}

// parseHTMLClosingTag parses a [closing tag] sans the leading '<'.
//
// [closing tag]: https://spec.commonmark.org/0.30/#closing-tag
func parseHTMLClosingTag(text []byte, pos int) (end int) {
	if peek(text, pos) != '/' {
		return -1
	}
	pos = parseHTMLTagName(text, pos+1)
	if pos < 0 {
		return -1
	}
	pos = skipLinkSpace(text, pos)
	if peek(text, pos) != '>' {
		return -1
	}
	return pos + 1
}

func parseHTMLTagName(text []byte, pos int) int {
	if !isASCIILetter(peek(text, pos)) {
		return -1
	}
	for pos++; pos < len(text) && (isASCIIAlphanumeric(text[pos]) || text[pos] == '-'); pos++ {
	}
	return pos
}

func parseHTMLAttribute(text []byte, pos int) int {
	// Attribute name.
	if c := peek(text, pos); !isASCIILetter(c) && c != '_' && c != ':' {
		return -1
	}
	for pos++; pos < len(text) && (isASCIIAlphanumeric(text[pos]) || strings.IndexByte("_.:-", text[pos]) >= 0); pos++ {
	}

	// Attribute value specification.
	// Don't consume space unless it is followed by an equal sign,
	// since it will cause future attributes to fail.
	afterName := pos
	pos = skipLinkSpace(text, pos)
	if peek(text, pos) != '=' {
		return afterName
	}
	pos = skipLinkSpace(text, pos+1)
	switch c := peek(text, pos); {
	case c == '\'' || c == '"':
		i := bytes.IndexByte(text[pos+1:], c)
		if i < 0 {
			return -1
		}
		return pos + 1 + i + 1
	case pos < len(text) && isUnquotedAttributeValueChar(c):
		for pos < len(text) && isUnquotedAttributeValueChar(text[pos]) {
			pos++
		}
		return pos
	default:
		// Must have an attribute value following equals sign.
		return -1
	}
}

// htmlBlockConditions is the set of [HTML block] start and end conditions.
//
// [HTML block]: https://spec.commonmark.org/0.30/#html-blocks
var htmlBlockConditions = []struct {
	startCondition        func(line []byte) bool
	endCondition          func(line []byte) bool
	canInterruptParagraph bool
}{
	{
		startCondition: func(line []byte) bool {
			for _, starter := range htmlBlockStarters1 {
				if hasCaseInsensitiveBytePrefix(line, starter) {
					rest := line[len(starter):]
					if len(rest) == 0 || isSpaceTabOrLineEnding(rest[0]) || rest[0] == '>' {
						return true
					}
				}
			}
			return false
		},
		endCondition: func(line []byte) bool {
			for _, ender := range htmlBlockEnders1 {
				if caseInsensitiveContains(line, ender) {
					return true
				}
			}
			return false
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line []byte) bool {
			return hasBytePrefix(line, "<!--")
		},
		endCondition: func(line []byte) bool {
			return contains(line, "-->")
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line []byte) bool {
			return hasBytePrefix(line, "<?")
		},
		endCondition: func(line []byte) bool {
			return contains(line, "?>")
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line []byte) bool {
			return hasBytePrefix(line, "<!") && len(line) >= 3 && isASCIILetter(line[2])
		},
		endCondition: func(line []byte) bool {
			return contains(line, ">")
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line []byte) bool {
			return hasBytePrefix(line, "<![CDATA[")
		},
		endCondition: func(line []byte) bool {
			return contains(line, "]]>")
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line []byte) bool {
			switch {
			case hasBytePrefix(line, "</"):
				line = line[2:]
			case hasBytePrefix(line, "<"):
				line = line[1:]
			default:
				return false
			}
			for _, starter := range htmlBlockStarters6 {
				if hasCaseInsensitiveBytePrefix(line, starter) {
					rest := line[len(starter):]
					if len(rest) == 0 || isSpaceTabOrLineEnding(rest[0]) || rest[0] == '>' || hasBytePrefix(rest, "/>") {
						return true
					}
				}
			}
			return false
		},
		endCondition:          isBlankLine,
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line []byte) bool {
			if !hasBytePrefix(line, "<") {
				return false
			}
			var end int
			if hasBytePrefix(line, "</") {
				end = parseHTMLClosingTag(line, 1)
			} else {
				end = parseHTMLOpenTag(line, 1)
			}
			return end >= 0 && isBlankLine(line[end:])
		},
		endCondition:          isBlankLine,
		canInterruptParagraph: false,
	},
}

func hasCaseInsensitiveBytePrefix(b []byte, prefix string) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i, bb := range b[:len(prefix)] {
		if toLowerASCII(prefix[i]) != toLowerASCII(bb) {
			return false
		}
	}
	return true
}

func caseInsensitiveContains(b []byte, search string) bool {
	for i := 0; i <= len(b)-len(search); i++ {
		if hasCaseInsensitiveBytePrefix(b[i:], search) {
			return true
		}
	}
	return false
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

func isUnquotedAttributeValueChar(c byte) bool {
	return !isSpaceTabOrLineEnding(c) && strings.IndexByte("\"'=<>`", c) < 0
}

var (
	htmlBlockStarters1 = []string{
		"<pre",
		"<script",
		"<style",
		"<textarea",
	}
	htmlBlockEnders1 = []string{
		"</pre>",
		"</script>",
		"</style>",
		"</textarea>",
	}

	htmlBlockStarters6 = []string{
		atom.Address.String(),
		atom.Article.String(),
		atom.Aside.String(),
		atom.Base.String(),
		atom.Basefont.String(),
		atom.Blockquote.String(),
		atom.Body.String(),
		atom.Caption.String(),
		atom.Center.String(),
		atom.Col.String(),
		atom.Colgroup.String(),
		atom.Dd.String(),
		atom.Details.String(),
		atom.Dialog.String(),
		atom.Dir.String(),
		atom.Div.String(),
		atom.Dl.String(),
		atom.Dt.String(),
		atom.Fieldset.String(),
		atom.Figcaption.String(),
		atom.Figure.String(),
		atom.Footer.String(),
		atom.Form.String(),
		atom.Frame.String(),
		atom.Frameset.String(),
		atom.H1.String(),
		atom.H2.String(),
		atom.H3.String(),
		atom.H4.String(),
		atom.H5.String(),
		atom.H6.String(),
		atom.Head.String(),
		atom.Header.String(),
		atom.Hr.String(),
		atom.Html.String(),
		atom.Iframe.String(),
		atom.Legend.String(),
		atom.Li.String(),
		atom.Link.String(),
		atom.Main.String(),
		atom.Menu.String(),
		atom.Menuitem.String(),
		atom.Nav.String(),
		atom.Noframes.String(),
		atom.Ol.String(),
		atom.Optgroup.String(),
		atom.Option.String(),
		atom.P.String(),
		atom.Param.String(),
		atom.Section.String(),
		atom.Source.String(),
		atom.Summary.String(),
		atom.Table.String(),
		atom.Tbody.String(),
		atom.Td.String(),
		atom.Tfoot.String(),
		atom.Th.String(),
		atom.Thead.String(),
		atom.Title.String(),
		atom.Tr.String(),
		atom.Track.String(),
		atom.Ul.String(),
	}
)
