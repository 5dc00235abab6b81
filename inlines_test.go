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
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDelimiterFlags(t *testing.T) {
	tests := []struct {
		prefix string
		run    string
		suffix string
		want   uint8
	}{
		// Official examples for left-flanking and right-flanking:
		{"", "***", "abc", openerFlag},
		{"  ", "_", "abc", openerFlag},
		{"", "**", `"abc"`, openerFlag},
		{" ", "_", `"abc"`, openerFlag},
		{" abc", "***", "", closerFlag},
		{" abc", "_", "", closerFlag},
		{`"abc"`, "**", "", closerFlag},
		{`"abc"`, "_", "", closerFlag},
		{" abc", "***", "def", openerFlag | closerFlag},
		{`"abc"`, "_", `"def"`, openerFlag | closerFlag},
		{"abc ", "***", " def", 0},
		{"a ", "_", " b", 0},

		// Extra examples to demonstrate
		// https://spec.commonmark.org/0.30/#can-open-emphasis
		// and
		// https://spec.commonmark.org/0.30/#can-close-emphasis.
		{"aa", "_", `"bb"`, closerFlag},
		{`"bb"`, "_", "cc", openerFlag},
		{"foo-", "_", "(bar)", openerFlag | closerFlag},
		{"(bar)", "_", "", closerFlag},
		{"abc", "_", "def", 0},

		// Strikethrough follows the asterisk rules.
		{"", "~~", "abc", openerFlag},
		{"abc", "~~", "", closerFlag},
		{"abc", "~~", "def", openerFlag | closerFlag},
	}
	for _, test := range tests {
		source := test.prefix + test.run + test.suffix
		start := len(test.prefix)
		end := len(test.prefix) + len(test.run)
		got := emphasisFlags([]byte(source), start, end)
		if got != test.want {
			t.Errorf("emphasisFlags(%q, %d, %d) = %#03b; want %#03b", source, start, end, got, test.want)
		}
	}
}

func TestInlines(t *testing.T) {
	tests := []struct {
		name   string
		parser *Parser
		source string
		want   []string
	}{
		{
			name:   "CodeSpan",
			source: "`a` b",
			want: []string{
				`codeSpan "a"`,
				`text " b"`,
			},
		},
		{
			name:   "CodeSpanStripsOneSpace",
			source: "`` `x` ``",
			want: []string{
				"codeSpan \"`x`\"",
			},
		},
		{
			name:   "UnmatchedBackticks",
			source: "``a`",
			want: []string{
				"text \"``a`\"",
			},
		},
		{
			name:   "Autolinks",
			source: "<https://x.io> and <a@b.co>",
			want: []string{
				`autolink dest="https://x.io"`,
				`text " and "`,
				`autolink dest="mailto:a@b.co"`,
			},
		},
		{
			name:   "RawHTML",
			source: `a <span class="x">b</span>`,
			want: []string{
				`text "a "`,
				`rawHtml "<span class=\"x\">"`,
				`text "b"`,
				`rawHtml "</span>"`,
			},
		},
		{
			name:   "Image",
			source: `![alt](/img.png "T")`,
			want: []string{
				`image dest="/img.png" title="T"`,
				`  text "alt"`,
			},
		},
		{
			name:   "NoLinksInLinks",
			source: "[a [b](c)](d)",
			want: []string{
				`text "[a "`,
				`link dest="c"`,
				`  text "b"`,
				`text "](d)"`,
			},
		},
		{
			name:   "BackslashEscapes",
			source: `\*not\* emphasis`,
			want: []string{
				`text "*not* emphasis"`,
			},
		},
		{
			name:   "BackslashHardBreak",
			source: "a\\\nb",
			want: []string{
				`text "a"`,
				`hardLineBreak`,
				`text "b"`,
			},
		},
		{
			name:   "SoftBreak",
			source: "a \nb",
			want: []string{
				`text "a"`,
				`softLineBreak`,
				`text "b"`,
			},
		},
		{
			name:   "Entities",
			source: "&amp; &copy; &bogus;",
			want: []string{
				`text "& © &bogus;"`,
			},
		},
		{
			name:   "TripleTilde",
			source: "~~~a~~~",
			want: []string{
				"text \"~~~a~~~\"",
			},
		},
		{
			name:   "RuleOfThree",
			source: "*foo**bar**baz*",
			want: []string{
				`emphasis`,
				`  text "foo"`,
				`  strong`,
				`    text "bar"`,
				`  text "baz"`,
			},
		},
		{
			name:   "CollapsedReference",
			source: "[Foo][]\n\n[foo]: /url",
			want: []string{
				`link dest="/url" ref="foo"`,
				`  text "Foo"`,
			},
		},
		{
			name:   "UndefinedFootnote",
			source: "[^nope] text",
			want: []string{
				`text "[^nope] text"`,
			},
		},
		{
			name:   "CitationMatcher",
			parser: &Parser{CitationMatcher: NewCitationKeySet("doe")},
			source: "[@doe; @smith] @doe",
			want: []string{
				`text "["`,
				`citation key="doe" in-text`,
				`text "; @smith] "`,
				`citation key="doe" in-text`,
			},
		},
		{
			name:   "EmailIsNotCitation",
			source: "me@example.com",
			want: []string{
				`text "me@example.com"`,
			},
		},
		{
			name:   "BracketedCitationWithPrefix",
			source: "[see @doe99, ch. 1]",
			want: []string{
				`citation key="doe99" prefix="see" locator="ch. 1"`,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := test.parser
			if p == nil {
				p = new(Parser)
			}
			doc, err := p.Parse([]byte(test.source))
			if err != nil {
				t.Fatal(err)
			}
			got := describeInlines(doc, doc.Root().Child(0))
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Parse(%q) inlines (-want +got):\n%s", test.source, diff)
			}
		})
	}
}

// describeInlines returns one line per inline node under the leaf block n.
func describeInlines(doc *Document, n Node) []string {
	var lines []string
	Walk(n, &WalkOptions{
		Pre: func(c *Cursor) bool {
			in := c.Node().Inline()
			if in == nil {
				return true
			}
			sb := new(strings.Builder)
			sb.WriteString(strings.Repeat("  ", c.Depth()-1))
			sb.WriteString(in.Kind().String())
			switch in.Kind() {
			case TextKind, CodeSpanKind, RawHTMLKind:
				fmt.Fprintf(sb, " %q", in.Text(doc.Source()))
			case LinkKind, ImageKind, AutolinkKind:
				fmt.Fprintf(sb, " dest=%q", in.LinkDestination())
				if title, ok := in.LinkTitle(); ok {
					fmt.Fprintf(sb, " title=%q", title)
				}
				if ref := in.LinkReference(); ref != "" {
					fmt.Fprintf(sb, " ref=%q", ref)
				}
			case FootnoteReferenceKind:
				fmt.Fprintf(sb, " label=%q", in.FootnoteLabel())
			case CitationKind:
				c, _ := in.Citation()
				fmt.Fprintf(sb, " key=%q", c.Key)
				if c.Prefix != "" {
					fmt.Fprintf(sb, " prefix=%q", c.Prefix)
				}
				if c.Locator != "" {
					fmt.Fprintf(sb, " locator=%q", c.Locator)
				}
				if c.SuppressAuthor {
					sb.WriteString(" suppress-author")
				}
				if c.InText {
					sb.WriteString(" in-text")
				}
			}
			lines = append(lines, sb.String())
			return true
		},
	})
	return lines
}
