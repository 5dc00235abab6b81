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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshalJSON(t *testing.T) {
	doc, err := Parse([]byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	const rng = `{"start":{"line":0,"character":0,"offset":0},"end":{"line":0,"character":1,"offset":1}}`
	want := `{"blockElements":[` +
		`{"type":"root"},` +
		`{"type":"paragraph","range":` + rng + `,"parent":0,"lines":[` + rng + `]}` +
		`],"inlineElements":[` +
		`{"type":"text","range":` + rng + `,"block":1,"text":"a"}` +
		`]}`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("json.Marshal(doc) (-want +got):\n%s", diff)
	}
}

func TestElements(t *testing.T) {
	const source = "# T\n\n> *x*\n"
	doc, err := Parse([]byte(source))
	if err != nil {
		t.Fatal(err)
	}
	elems := doc.Elements()
	idx := doc.Lines()
	r := func(start, end int) Range {
		rng, err := idx.RangeOf(start, end)
		if err != nil {
			t.Fatal(err)
		}
		return rng
	}
	rp := func(start, end int) *Range {
		rng := r(start, end)
		return &rng
	}

	wantBlocks := []BlockElement{
		{Type: "root"},
		{Type: "atxHeading", Range: rp(0, 3), Parent: intPtr(0), Level: 1, ContentRange: rp(2, 3)},
		{Type: "blockQuote", Range: rp(5, 10), Parent: intPtr(0)},
		{Type: "paragraph", Range: rp(7, 10), Parent: intPtr(2), Lines: []Range{r(7, 10)}},
	}
	if diff := cmp.Diff(wantBlocks, elems.BlockElements); diff != "" {
		t.Errorf("BlockElements (-want +got):\n%s", diff)
	}

	wantInlines := []InlineElement{
		{Type: "text", Range: r(2, 3), Block: 1, Text: "T"},
		{Type: "emphasis", Range: r(7, 10), Block: 3},
		{Type: "text", Range: r(8, 9), Block: 3, Parent: intPtr(1), Text: "x"},
	}
	if diff := cmp.Diff(wantInlines, elems.InlineElements); diff != "" {
		t.Errorf("InlineElements (-want +got):\n%s", diff)
	}
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		body    string
		want    string
		wantErr bool
	}{
		{body: `{"source": "# Hi\n"}`, want: "# Hi\n"},
		{body: `{}`, want: ""},
		{body: `{"source": 5}`, wantErr: true},
		{body: `{"source": "a"} {"source": "b"}`, wantErr: true},
		{body: ``, wantErr: true},
	}
	for _, test := range tests {
		req, err := DecodeRequest(strings.NewReader(test.body))
		if test.wantErr {
			if err == nil {
				t.Errorf("DecodeRequest(%q) = %+v, <nil>; want error", test.body, req)
			}
			continue
		}
		if err != nil {
			t.Errorf("DecodeRequest(%q): %v", test.body, err)
			continue
		}
		if req.Source != test.want {
			t.Errorf("DecodeRequest(%q).Source = %q; want %q", test.body, req.Source, test.want)
		}
	}
}
