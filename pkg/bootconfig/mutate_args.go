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

package bootconfig

import (
	"strings"

	"github.com/google/shlex"
	"github.com/rancher/grubby/pkg/dialect"
)

// argKey returns the portion of a kernel argument token before its first
// "=", which is what distinguishes "root=/dev/sda1 quiet" into a
// replaceable key/value pair vs. a bare flag (§4.E.2 arg_match).
func argKey(tok string) string {
	if i := strings.IndexByte(tok, '='); i >= 0 {
		return tok[:i]
	}
	return tok
}

func argMatch(existing, candidateKey string) bool {
	return argKey(existing) == candidateKey
}

// splitArgString tokenizes a shell-quoted argument string the way the
// CLI's --args/--remove-args values are written (§4.E.2 step 1).
func splitArgString(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	toks, err := shlex.Split(s)
	if err != nil {
		return strings.Fields(s)
	}
	return toks
}

// argsLine builds a fresh KernelArgs line from a shell-quoted argument
// string, one element per token, quoting deferred to serialize time.
func argsLine(indent string, kw dialect.Keyword, args string) *Line {
	sep := " "
	if kw.Separator == '=' {
		sep = "="
	}
	elements := []Element{{Token: kw.Text, Trailing: sep}}
	toks := splitArgString(args)
	for i, t := range toks {
		trailing := " "
		if i == len(toks)-1 {
			trailing = ""
		}
		elements = append(elements, Element{Token: t, Trailing: trailing})
	}
	return &Line{LeadingIndent: indent, Kind: dialect.KernelArgs, Elements: elements}
}

// argsCarrier locates the line that holds an entry's kernel arguments and
// the number of leading elements that are not themselves an argument
// token. Dialects with a dedicated KernelArgs keyword (LILO-family,
// ZIPL) get their own line, offset 1 (the keyword). GRUB has no such
// keyword: arguments are extra tokens trailing the Kernel line itself,
// offset 2 (keyword + kernel path).
func argsCarrier(cfg *Config, entry *Entry, createIfMissing bool) (*Line, int) {
	if kw, ok := cfg.Dialect.KeywordForKind(dialect.KernelArgs); ok {
		for _, l := range entry.Lines {
			if l.Kind == dialect.KernelArgs {
				return l, 1
			}
		}
		if !createIfMissing {
			return nil, 1
		}
		l := kvLine(cfg.SecondaryIndent, kw, "", dialect.KernelArgs)
		l.Elements = l.Elements[:1]
		insertIdx := kernelLineIndex(entry) + 1
		entry.Lines = insertLine(entry.Lines, insertIdx, l)
		return l, 1
	}

	for _, l := range entry.Lines {
		if l.Kind == dialect.Kernel {
			return l, 2
		}
	}
	return nil, 2
}

func kernelLineIndex(entry *Entry) int {
	for i, l := range entry.Lines {
		if l.Kind == dialect.Kernel {
			return i
		}
	}
	return len(entry.Lines) - 1
}

func rootLine(cfg *Config, entry *Entry, createIfMissing bool) *Line {
	for _, l := range entry.Lines {
		if l.Kind == dialect.Root {
			return l
		}
	}
	if !createIfMissing {
		return nil
	}
	kw, ok := cfg.Dialect.KeywordForKind(dialect.Root)
	if !ok {
		return nil
	}
	l := kvLine(cfg.SecondaryIndent, kw, "", dialect.Root)
	insertIdx := kernelLineIndex(entry) + 1
	entry.Lines = insertLine(entry.Lines, insertIdx, l)
	return l
}

// removeElementsMatching drops elements from a value-bearing line (every
// element past the first offset elements, which carry the keyword and,
// for GRUB, the kernel path) whose token's key matches any of keys
// (§4.E.2 step 6). A dropped element's trailing run is handed to the
// element kept immediately before it, so column alignment around the
// deletion survives.
func removeElementsMatching(l *Line, offset int, keys []string) {
	if l == nil || len(l.Elements) <= offset {
		return
	}
	kept := append([]Element{}, l.Elements[:offset]...)
	for _, e := range l.Elements[offset:] {
		drop := false
		for _, k := range keys {
			if argMatch(e.Token, k) {
				drop = true
				break
			}
		}
		if drop {
			if len(kept) > 0 {
				kept[len(kept)-1].Trailing = e.Trailing
			}
			continue
		}
		kept = append(kept, e)
	}
	l.Elements = kept
}

// removeLineFromEntry drops l from entry.Lines, used when a carrier line
// is left holding nothing but its own keyword (§4.E.2 step 7).
func removeLineFromEntry(entry *Entry, l *Line) {
	for i, cand := range entry.Lines {
		if cand == l {
			entry.Lines = append(entry.Lines[:i], entry.Lines[i+1:]...)
			return
		}
	}
}

// pruneIfBare deletes l from entry if it is a KernelArgs line that
// removal left with nothing past its keyword. A Kernel line is never
// deleted, even when it carries no more arguments.
func pruneIfBare(entry *Entry, l *Line, offset int) {
	if l == nil || l.Kind != dialect.KernelArgs {
		return
	}
	if len(l.Elements) <= offset {
		removeLineFromEntry(entry, l)
	}
}

// UpdateArgs implements §4.E.2: addArgs/removeArgs are shell-quoted
// argument strings applied to entry's kernel-args line. A "root=/dev/..."
// addition is redirected to the entry's Root line (and any stray root=
// tokens already present in the args line are removed) for dialects that
// carry a distinct Root directive; other root= forms stay in the args line.
func UpdateArgs(cfg *Config, entry *Entry, addArgs, removeArgs string) {
	removeTokens := splitArgString(removeArgs)
	addTokens := splitArgString(addArgs)

	if len(removeTokens) > 0 {
		keys := make([]string, len(removeTokens))
		for i, t := range removeTokens {
			keys[i] = argKey(t)
		}
		l, offset := argsCarrier(cfg, entry, false)
		removeElementsMatching(l, offset, keys)
		pruneIfBare(entry, l, offset)
	}

	if len(addTokens) == 0 {
		return
	}

	// Last occurrence of a repeated key wins.
	ordered := make([]string, 0, len(addTokens))
	byKey := make(map[string]int)
	for _, t := range addTokens {
		k := argKey(t)
		if idx, ok := byKey[k]; ok {
			ordered[idx] = t
			continue
		}
		byKey[k] = len(ordered)
		ordered = append(ordered, t)
	}

	_, hasRoot := cfg.Dialect.KeywordForKind(dialect.Root)

	var toArgsLine []string
	for _, t := range ordered {
		if hasRoot && strings.HasPrefix(t, "root=/dev/") {
			rl := rootLine(cfg, entry, true)
			rl.Elements = []Element{rl.Elements[0], {Token: strings.TrimPrefix(t, "root=")}}
			if l, offset := argsCarrier(cfg, entry, false); l != nil {
				removeElementsMatching(l, offset, []string{"root"})
				pruneIfBare(entry, l, offset)
			}
			continue
		}
		toArgsLine = append(toArgsLine, t)
	}

	if len(toArgsLine) == 0 {
		return
	}

	al, offset := argsCarrier(cfg, entry, true)
	if al == nil {
		return
	}
	keys := make([]string, len(toArgsLine))
	for i, t := range toArgsLine {
		keys[i] = argKey(t)
	}
	removeElementsMatching(al, offset, keys)

	// Step 3: each append steals the current last element's trailing run
	// and narrows that element's own trailing to a single space, so the
	// new token lands where the line used to end.
	for _, t := range toArgsLine {
		n := len(al.Elements)
		stolen := al.Elements[n-1].Trailing
		al.Elements[n-1].Trailing = " "
		al.Elements = append(al.Elements, Element{Token: t, Trailing: stolen})
	}
}
