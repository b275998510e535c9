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

// pendingRef tracks a not-yet-resolvable default/fallback reference
// while the entry list is still being built.
type pendingRef struct {
	set      bool
	index    int
	title    string
	byTitle  bool
	isSaved  bool
}

// Assemble turns a tokenized line stream into a Config, implementing the
// entry-boundary detection, generic-option migration and default/fallback
// resolution rules of §4.C.
func Assemble(lines []*Line, d *dialect.Dialect, sourcePath string) *Config {
	cfg := &Config{
		Dialect:           d,
		DefaultImage:      constants.NoDefault,
		FallbackImage:     constants.NoDefault,
		NoExplicitDefault: true,
		SourcePath:        sourcePath,
	}

	var entries []*Entry
	var current *Entry
	seenEntry := false
	dropNextBlank := false

	var pendingDefault, pendingFallback pendingRef

	resolveRef := func(l *Line) pendingRef {
		raw := l.Value(1)
		if d.DefaultRepresentation == dialect.Index {
			if d.SupportsSavedDefault && strings.TrimSpace(raw) == "saved" {
				return pendingRef{set: true, isSaved: true}
			}
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return pendingRef{}
			}
			return pendingRef{set: true, index: n}
		}
		return pendingRef{set: true, byTitle: true, title: raw}
	}

	for i, line := range lines {
		isSeparator := line.Kind == d.EntrySeparatorKind
		if isSeparator && (current == nil || len(current.Lines) > 0) {
			if current != nil {
				entries = append(entries, current)
			}
			current = &Entry{}
			seenEntry = true
			if cfg.PrimaryIndent == "" {
				cfg.PrimaryIndent = line.LeadingIndent
			}
		}

		if line.Kind == dialect.Generic && seenEntry {
			insertAt := lastNonWhitespace(cfg.HeaderLines) + 1
			cfg.HeaderLines = insertLine(cfg.HeaderLines, insertAt, line)
			if i > 0 && lines[i-1].Kind == dialect.Whitespace {
				dropNextBlank = true
			}
			continue
		}

		if dropNextBlank && line.Kind == dialect.Whitespace {
			dropNextBlank = false
			continue
		}
		dropNextBlank = false

		if !seenEntry {
			cfg.HeaderLines = append(cfg.HeaderLines, line)
		} else {
			if cfg.SecondaryIndent == "" && !isSeparator && len(current.Lines) == 1 {
				cfg.SecondaryIndent = line.LeadingIndent
			}
			current.Lines = append(current.Lines, line)
		}

		switch line.Kind {
		case dialect.Default:
			cfg.NoExplicitDefault = false
			pendingDefault = resolveRef(line)
		case dialect.Fallback:
			pendingFallback = resolveRef(line)
		case dialect.MbModule:
			if current != nil {
				current.IsMultiboot = true
			}
		}
	}
	if current != nil {
		entries = append(entries, current)
	}
	cfg.Entries = entries

	cfg.DefaultImage = resolveIndex(pendingDefault, entries)
	cfg.FallbackImage = resolveIndex(pendingFallback, entries)

	return cfg
}

func resolveIndex(ref pendingRef, entries []*Entry) int {
	if !ref.set {
		return constants.NoDefault
	}
	if ref.isSaved {
		return constants.DefaultSaved
	}
	if !ref.byTitle {
		if ref.index < 0 || ref.index >= len(entries) {
			return constants.NoDefault
		}
		return ref.index
	}
	for i, e := range entries {
		if e.Title() == ref.title {
			return i
		}
	}
	return constants.NoDefault
}

// lastNonWhitespace returns the index of the last non-Whitespace line in
// lines, or -1 if there is none.
func lastNonWhitespace(lines []*Line) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Kind != dialect.Whitespace {
			return i
		}
	}
	return -1
}

// insertLine inserts l at position idx (clamped to range) in lines.
func insertLine(lines []*Line, idx int, l *Line) []*Line {
	if idx < 0 {
		idx = 0
	}
	if idx > len(lines) {
		idx = len(lines)
	}
	out := make([]*Line, 0, len(lines)+1)
	out = append(out, lines[:idx]...)
	out = append(out, l)
	out = append(out, lines[idx:]...)
	return out
}
