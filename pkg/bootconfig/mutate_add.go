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
	"strconv"
	"strings"

	"github.com/rancher/grubby/pkg/constants"
	"github.com/rancher/grubby/pkg/dialect"
)

// AddKernelParams collects the inputs to AddKernel (§4.E.1).
type AddKernelParams struct {
	KernelPath    string
	Title         string
	Initrd        string
	Args          string
	Root          string
	Prefix        string // boot-filesystem prefix, e.g. "/boot"
	CopyDefault   *Entry // seed lines copied from an existing template
	MakeDefault   bool
	Multiboot     bool
	ModulePaths   []string
}

// stripBootPrefix removes the boot-filesystem prefix from a path when the
// dialect stores kernel paths relative to it (§4.A NeedsBootPrefix).
func stripBootPrefix(d *dialect.Dialect, prefix, path string) string {
	if !d.NeedsBootPrefix || prefix == "" {
		return path
	}
	return strings.TrimPrefix(path, prefix)
}

// truncateTitle shortens title to the dialect's MaxTitleLength, if any
// (LILO's 15-character label limit, §4.A/§4.E.1).
func truncateTitle(d *dialect.Dialect, title string) string {
	if d.MaxTitleLength > 0 && len(title) > d.MaxTitleLength {
		return title[:d.MaxTitleLength]
	}
	return title
}

// disambiguateTitle appends the smallest numeric suffix that makes title
// unique among cfg's existing entry titles, trimming to stay within the
// dialect's MaxTitleLength.
func disambiguateTitle(cfg *Config, title string) string {
	existing := make(map[string]bool, len(cfg.Entries))
	for _, e := range cfg.Entries {
		existing[e.Title()] = true
	}
	if !existing[title] {
		return title
	}
	d := cfg.Dialect
	for n := 1; ; n++ {
		suffix := strconv.Itoa(n)
		candidate := title
		if d.MaxTitleLength > 0 && len(title)+len(suffix) > d.MaxTitleLength {
			trim := d.MaxTitleLength - len(suffix)
			if trim < 0 {
				trim = 0
			}
			candidate = title[:trim]
		}
		candidate += suffix
		if !existing[candidate] {
			return candidate
		}
	}
}

func kvLine(indent string, kw dialect.Keyword, value string, kind dialect.LineKind) *Line {
	sep := " "
	if kw.Separator == '=' {
		sep = "="
	}
	return &Line{
		LeadingIndent: indent,
		Kind:          kind,
		Elements: []Element{
			{Token: kw.Text, Trailing: sep},
			{Token: value},
		},
	}
}

// buildEntryLines synthesizes the lines of a new entry in the dialect's
// native shape, seeding indentation from the config's observed primary/
// secondary indents (§4.E.1).
func buildEntryLines(cfg *Config, p AddKernelParams, title string) []*Line {
	d := cfg.Dialect
	primary, secondary := cfg.PrimaryIndent, cfg.SecondaryIndent

	var lines []*Line

	titleIndent := secondary
	if d.EntrySeparatorKind == dialect.Title {
		titleIndent = primary
	}
	if d.TitlesBracketed {
		lines = append(lines, &Line{
			LeadingIndent: titleIndent,
			Kind:          dialect.Title,
			Elements:      []Element{{Token: "[" + title + "]"}},
		})
	} else if kw, ok := d.KeywordForKind(dialect.Title); ok {
		lines = append(lines, kvLine(titleIndent, kw, title, dialect.Title))
	}

	kernelIndent := secondary
	if d.EntrySeparatorKind == dialect.Kernel {
		kernelIndent = primary
	}
	if kw, ok := d.KeywordForKind(dialect.Kernel); ok {
		lines = append(lines, kvLine(kernelIndent, kw, stripBootPrefix(d, p.Prefix, p.KernelPath), dialect.Kernel))
	}

	if p.Root != "" {
		if kw, ok := d.KeywordForKind(dialect.Root); ok {
			lines = append(lines, kvLine(secondary, kw, p.Root, dialect.Root))
		}
	}

	if p.Initrd != "" {
		if kw, ok := d.KeywordForKind(dialect.Initrd); ok {
			lines = append(lines, kvLine(secondary, kw, stripBootPrefix(d, p.Prefix, p.Initrd), dialect.Initrd))
		}
	}

	if p.Args != "" {
		if kw, ok := d.KeywordForKind(dialect.KernelArgs); ok {
			lines = append(lines, argsLine(secondary, kw, p.Args))
		}
	}

	if p.Multiboot {
		if kw, ok := d.KeywordForKind(dialect.MbModule); ok {
			for _, m := range p.ModulePaths {
				lines = append(lines, kvLine(secondary, kw, m, dialect.MbModule))
			}
		}
	}

	return lines
}

// cloneLines deep-copies a line slice so a copied template entry doesn't
// alias the original's backing arrays.
func cloneLines(lines []*Line) []*Line {
	out := make([]*Line, len(lines))
	for i, l := range lines {
		cp := *l
		cp.Elements = append([]Element(nil), l.Elements...)
		out[i] = &cp
	}
	return out
}

// AddKernel implements §4.E.1: it inserts a new entry at the front of
// the config and returns it. DefaultImage and FallbackImage are left
// unchanged; see the note in the body.
func AddKernel(cfg *Config, p AddKernelParams) *Entry {
	title := disambiguateTitle(cfg, truncateTitle(cfg.Dialect, p.Title))

	var lines []*Line
	if p.CopyDefault != nil {
		lines = cloneLines(p.CopyDefault.Lines)
		rewriteCopiedEntry(cfg.Dialect, lines, title, p)
	} else {
		lines = buildEntryLines(cfg, p, title)
	}

	entry := &Entry{Lines: lines, IsMultiboot: p.Multiboot || hasModuleLines(lines)}

	cfg.Entries = append([]*Entry{entry}, cfg.Entries...)

	// Default/fallback index bookkeeping (the bump for this insertion, the
	// decrement for any entry marked removed in the same invocation, and
	// the make-default override) is left to the caller's single pass over
	// AdjustDefaultForRemovals/AdjustFallbackForRemovals/
	// MakeNewEntryDefault once every requested mutation has been applied.

	return entry
}

func hasModuleLines(lines []*Line) bool {
	for _, l := range lines {
		if l.Kind == dialect.MbModule {
			return true
		}
	}
	return false
}

// rewriteCopiedEntry overwrites the title/kernel/initrd/root/args fields of a
// cloned template entry in place, preserving every other copied line
// verbatim (§4.E.1 copy-default behavior).
func rewriteCopiedEntry(d *dialect.Dialect, lines []*Line, title string, p AddKernelParams) {
	for _, l := range lines {
		switch l.Kind {
		case dialect.Title:
			if d.TitlesBracketed {
				l.Elements[0].Token = "[" + title + "]"
			} else if len(l.Elements) >= 2 {
				l.Elements[1].Token = title
			}
		case dialect.Kernel:
			if len(l.Elements) >= 2 {
				l.Elements[1].Token = stripBootPrefix(d, p.Prefix, p.KernelPath)
			}
		case dialect.Initrd:
			if p.Initrd != "" && len(l.Elements) >= 2 {
				l.Elements[1].Token = stripBootPrefix(d, p.Prefix, p.Initrd)
			}
		case dialect.Root:
			if p.Root != "" && len(l.Elements) >= 2 {
				l.Elements[1].Token = p.Root
			}
		case dialect.KernelArgs:
			if p.Args != "" {
				if kw, ok := d.KeywordForKind(dialect.KernelArgs); ok {
					fresh := argsLine(l.LeadingIndent, kw, p.Args)
					*l = *fresh
				}
			}
		}
	}
}
