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

	"github.com/rancher/grubby/pkg/dialect"
)

// Entry is one boot stanza: a run of Lines bounded by the dialect's
// entry-separator kind (§3 Entry).
type Entry struct {
	Lines         []*Line
	MarkedRemoved bool
	IsMultiboot   bool
}

// firstLineOfKind returns the first line in the entry matching kind, or
// nil.
func (e *Entry) firstLineOfKind(kind dialect.LineKind) *Line {
	for _, l := range e.Lines {
		if l.Kind == kind {
			return l
		}
	}
	return nil
}

// Title returns the entry's title text, or "" if it has none. A
// bracketed ZIPL-style title ("[linux]") is unwrapped; every other
// dialect stores the title as the line's second element.
func (e *Entry) Title() string {
	l := e.firstLineOfKind(dialect.Title)
	if l == nil {
		return ""
	}
	if len(l.Elements) == 1 {
		tok := l.Elements[0].Token
		if strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]") {
			return tok[1 : len(tok)-1]
		}
		return tok
	}
	return l.Value(1)
}

// KernelPath returns the value of the entry's Kernel line, or "".
func (e *Entry) KernelPath() string {
	if l := e.firstLineOfKind(dialect.Kernel); l != nil {
		return l.Value(1)
	}
	return ""
}

// HasKernel reports whether the entry carries a Kernel line at all; an
// entry lacking one is skipped by index-based lookup (§4.D).
func (e *Entry) HasKernel() bool {
	return e.firstLineOfKind(dialect.Kernel) != nil
}

// DisplayInfo holds the fields --info prints for one entry (§6.1).
type DisplayInfo struct {
	Kernel    string
	Args      string
	HasArgs   bool
	Root      string
	HasRoot   bool
	Initrd    string
	HasInitrd bool
}

// Display computes the index=/kernel=/args=/root=/initrd= fields --info
// prints for this entry, threading the root= lookup through whichever
// argument line supplied it rather than treating it as an independent
// cascade: a GRUB-style Kernel line carrying trailing tokens is scanned
// first, falling back to a dialect's dedicated KernelArgs line, and only
// once neither source named a root= token does the entry's own Root line
// get consulted.
func (e *Entry) Display(prefix string) DisplayInfo {
	var info DisplayInfo

	k := e.firstLineOfKind(dialect.Kernel)
	if k != nil {
		info.Kernel = k.Value(1)
	}

	var argsLine *Line
	var offset int
	if k != nil && len(k.Elements) >= 3 {
		argsLine, offset = k, 2
	} else if a := e.firstLineOfKind(dialect.KernelArgs); a != nil {
		argsLine, offset = a, 1
	}

	var root string
	if argsLine != nil {
		info.HasArgs = true
		var b strings.Builder
		for _, el := range argsLine.Elements[offset:] {
			if strings.HasPrefix(el.Token, "root=") {
				root = strings.TrimPrefix(el.Token, "root=")
				continue
			}
			b.WriteString(el.Token)
			b.WriteString(el.Trailing)
		}
		info.Args = b.String()
	}

	if root == "" {
		if r := e.firstLineOfKind(dialect.Root); r != nil && len(r.Elements) >= 2 {
			root = r.Value(1)
		}
	}
	if root != "" {
		info.Root = strings.TrimSuffix(root, `"`)
		info.HasRoot = true
	}

	if init := e.firstLineOfKind(dialect.Initrd); init != nil && len(init.Elements) >= 2 {
		var b strings.Builder
		for _, el := range init.Elements[1:] {
			b.WriteString(el.Token)
			b.WriteString(el.Trailing)
		}
		info.Initrd = prefix + b.String()
		info.HasInitrd = true
	}

	return info
}

// Config is the parsed, layout-preserving in-memory representation of a
// bootloader config file (§3 Config).
type Config struct {
	Dialect *dialect.Dialect

	// HeaderLines precede the first entry; generic options migrate here.
	HeaderLines []*Line
	Entries     []*Entry

	// DefaultImage and FallbackImage are 0-based entry indexes, or the
	// NoDefault/DefaultSaved sentinels from pkg/constants.
	DefaultImage  int
	FallbackImage int

	// NoExplicitDefault records that the source file never had a default
	// line at all, as distinct from an explicit "default 0" (§4.C, §4.F).
	NoExplicitDefault bool

	// PrimaryIndent and SecondaryIndent are the indentation strings
	// observed on the Kernel/Title line and on the lines that follow it,
	// used when synthesizing new lines (§4.E.1).
	PrimaryIndent   string
	SecondaryIndent string

	// SourcePath is the file this config was parsed from, used as the
	// default output path on write-back (§6.1).
	SourcePath string
}

// NonRemovedEntries returns the entries not marked removed, preserving
// order.
func (c *Config) NonRemovedEntries() []*Entry {
	out := make([]*Entry, 0, len(c.Entries))
	for _, e := range c.Entries {
		if !e.MarkedRemoved {
			out = append(out, e)
		}
	}
	return out
}
