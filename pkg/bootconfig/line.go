/*
Copyright © 2022 - 2025 SUSE LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package bootconfig implements the layout-preserving line tokenizer,
// config model, query, mutator and serializer described in spec.md
// §4.B-§4.H.
package bootconfig

import (
	"strings"

	"github.com/rancher/grubby/pkg/dialect"
)

// Element is one (token, trailing_run) pair of a Line (§3).
type Element struct {
	Token    string
	Trailing string
}

// Line is one tokenized source line (§3).
type Line struct {
	LeadingIndent string
	Elements      []Element
	Kind          dialect.LineKind
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t'
}

// Value returns the text of the Nth element's token, or "" if absent.
func (l *Line) Value(n int) string {
	if n < 0 || n >= len(l.Elements) {
		return ""
	}
	return l.Elements[n].Token
}

// Raw reproduces the exact bytes of the line (without the trailing
// newline), per the §3 invariant.
func (l *Line) Raw() string {
	var b strings.Builder
	b.WriteString(l.LeadingIndent)
	for _, e := range l.Elements {
		b.WriteString(e.Token)
		b.WriteString(e.Trailing)
	}
	return b.String()
}

// tokenizeBody splits the part of a physical line after its leading
// indent into (token, trailing_run) elements, per §4.B step 2.
func tokenizeBody(body string) []Element {
	var elements []Element
	i := 0
	n := len(body)
	first := true
	for i < n {
		tokStart := i
		if first {
			for i < n && !isSpaceByte(body[i]) && body[i] != '=' {
				i++
			}
		} else {
			for i < n && !isSpaceByte(body[i]) {
				i++
			}
		}
		if i == tokStart {
			// First character is itself '=' or whitespace; consume it as
			// a degenerate single-byte token so we always make progress.
			i++
		}
		token := body[tokStart:i]

		trailStart := i
		for i < n && isSpaceByte(body[i]) {
			i++
		}
		if i < n && body[i] == '=' {
			i++
			for i < n && isSpaceByte(body[i]) {
				i++
			}
		}
		trailing := body[trailStart:i]

		elements = append(elements, Element{Token: token, Trailing: trailing})
		first = false
	}
	return elements
}

// tokenizeLine splits one physical line (no trailing '\n') into a Line,
// applying dialect-specific classification and the two canonicalization
// exceptions of §4.B.
func tokenizeLine(raw string, d *dialect.Dialect) *Line {
	i := 0
	n := len(raw)
	for i < n && isSpaceByte(raw[i]) {
		i++
	}
	indent := raw[:i]
	elements := tokenizeBody(raw[i:])

	line := &Line{LeadingIndent: indent, Elements: elements}

	if len(elements) == 0 {
		line.Kind = dialect.Whitespace
		return line
	}

	first := elements[0].Token

	if strings.HasPrefix(first, "#") {
		var b strings.Builder
		b.WriteString(indent)
		for _, e := range elements {
			b.WriteString(e.Token)
			b.WriteString(e.Trailing)
		}
		return &Line{LeadingIndent: b.String(), Kind: dialect.Whitespace}
	}

	if kw, ok := d.Lookup(first); ok {
		line.Kind = kw.Kind
	} else if d.TitlesBracketed && isBracketedTitleToken(first) {
		line.Kind = dialect.Title
	} else {
		line.Kind = dialect.Unknown
	}

	canonicalize(line, d)
	return line
}

// isBracketedTitleToken reports whether tok is a "[...]"-shaped token
// distinct from ZIPL's "[defaultboot]" magic section (§4.B).
func isBracketedTitleToken(tok string) bool {
	if len(tok) < 2 || tok[0] != '[' || tok[len(tok)-1] != ']' {
		return false
	}
	return tok != "[defaultboot]"
}

// canonicalize applies the two read-time exceptions to byte-for-byte
// preservation described in §4.B.
func canonicalize(line *Line, d *dialect.Dialect) {
	if line.Kind == dialect.Title && len(line.Elements) > 2 {
		var tok strings.Builder
		for i := 1; i < len(line.Elements)-1; i++ {
			tok.WriteString(line.Elements[i].Token)
			tok.WriteString(line.Elements[i].Trailing)
		}
		tok.WriteString(line.Elements[len(line.Elements)-1].Token)
		merged := Element{
			Token:    tok.String(),
			Trailing: line.Elements[len(line.Elements)-1].Trailing,
		}
		line.Elements = []Element{line.Elements[0], merged}
	}

	if line.Kind == dialect.KernelArgs && d.ArgsInQuotes && len(line.Elements) >= 2 {
		line.Elements[1].Token = strings.TrimPrefix(line.Elements[1].Token, `"`)
		last := len(line.Elements) - 1
		line.Elements[last].Token = strings.TrimSuffix(line.Elements[last].Token, `"`)
	}
}

// Tokenize splits buf into Line records per §4.B. buf is assumed to be
// newline-terminated (or empty); callers append a trailing '\n' first
// if the source lacked one.
func Tokenize(buf []byte, d *dialect.Dialect) []*Line {
	text := string(buf)
	if text == "" {
		return []*Line{tokenizeLine("", d)}
	}
	text = strings.TrimSuffix(text, "\n")
	rawLines := strings.Split(text, "\n")
	lines := make([]*Line, 0, len(rawLines))
	for _, raw := range rawLines {
		lines = append(lines, tokenizeLine(raw, d))
	}
	return lines
}

// EnsureTerminated appends a trailing '\n' if buf lacks one, and treats
// a wholly empty file as a single empty line (§4.B contract).
func EnsureTerminated(buf []byte) []byte {
	if len(buf) == 0 {
		return []byte("\n")
	}
	if buf[len(buf)-1] != '\n' {
		return append(buf, '\n')
	}
	return buf
}
