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
	"os"
	"strconv"
	"strings"

	"github.com/rancher/grubby/pkg/constants"
	"github.com/rancher/grubby/pkg/dialect"
	"github.com/rancher/grubby/pkg/grubbyerr"
	"github.com/rancher/grubby/pkg/types"
)

// WouldBeEmpty reports whether writing cfg would leave a config with no
// surviving entries (§7 WouldLeaveEmpty).
func (c *Config) WouldBeEmpty() bool {
	return len(c.NonRemovedEntries()) == 0
}

func encodeRef(d *dialect.Dialect, index int, entries []*Entry) (string, bool) {
	if index == constants.DefaultSaved {
		return "saved", true
	}
	if index < 0 || index >= len(entries) {
		return "", false
	}
	if d.DefaultRepresentation == dialect.Index {
		return strconv.Itoa(index), true
	}
	return entries[index].Title(), true
}

// syncDefaultLine updates or synthesizes the header's Default line to
// match cfg.DefaultImage, honoring the §4.F suppression rule: a file
// that never had an explicit default, and whose default still resolves
// to the first entry, is written back without one.
func syncDefaultLine(cfg *Config) {
	suppress := cfg.NoExplicitDefault && cfg.DefaultImage == 0
	value, ok := encodeRef(cfg.Dialect, cfg.DefaultImage, cfg.Entries)

	existing := findHeaderLine(cfg.HeaderLines, dialect.Default)

	if suppress || !ok {
		if existing != nil {
			removeHeaderLine(cfg, dialect.Default)
		}
		return
	}

	if existing != nil {
		existing.Elements[1].Token = value
		return
	}

	kw, has := cfg.Dialect.KeywordForKind(dialect.Default)
	if !has {
		return
	}
	// A synthesized default line always uses "=" as its separator,
	// regardless of the dialect's usual keyword separator, matching the
	// bootloader's tolerance for either form in practice.
	line := &Line{
		LeadingIndent: cfg.PrimaryIndent,
		Kind:          dialect.Default,
		Elements: []Element{
			{Token: kw.Text, Trailing: "="},
			{Token: value},
		},
	}
	cfg.HeaderLines = append(cfg.HeaderLines, line)
}

func syncFallbackLine(cfg *Config) {
	existing := findHeaderLine(cfg.HeaderLines, dialect.Fallback)
	value, ok := encodeRef(cfg.Dialect, cfg.FallbackImage, cfg.Entries)

	if !ok {
		if existing != nil {
			removeHeaderLine(cfg, dialect.Fallback)
		}
		return
	}

	if existing != nil {
		existing.Elements[1].Token = value
		return
	}

	kw, has := cfg.Dialect.KeywordForKind(dialect.Fallback)
	if !has {
		return
	}
	cfg.HeaderLines = append(cfg.HeaderLines, kvLine(cfg.PrimaryIndent, kw, value, dialect.Fallback))
}

func findHeaderLine(lines []*Line, kind dialect.LineKind) *Line {
	for _, l := range lines {
		if l.Kind == kind {
			return l
		}
	}
	return nil
}

func removeHeaderLine(cfg *Config, kind dialect.LineKind) {
	out := cfg.HeaderLines[:0:0]
	for _, l := range cfg.HeaderLines {
		if l.Kind != kind {
			out = append(out, l)
		}
	}
	cfg.HeaderLines = out
}

// renderLine reproduces a line's bytes, reintroducing the quotes the
// tokenizer strips from an ArgsInQuotes dialect's kernel-args value on
// read (§4.B/§4.F symmetry).
func renderLine(l *Line, d *dialect.Dialect) string {
	if l.Kind != dialect.KernelArgs || !d.ArgsInQuotes || len(l.Elements) < 2 {
		return l.Raw()
	}
	var b strings.Builder
	b.WriteString(l.LeadingIndent)
	b.WriteString(l.Elements[0].Token)
	b.WriteString(l.Elements[0].Trailing)
	b.WriteByte('"')
	last := len(l.Elements) - 1
	for i := 1; i < len(l.Elements); i++ {
		b.WriteString(l.Elements[i].Token)
		if i == last {
			b.WriteByte('"')
		}
		b.WriteString(l.Elements[i].Trailing)
	}
	return b.String()
}

// Serialize renders cfg back to bytes, per §4.F.
func Serialize(cfg *Config) []byte {
	syncDefaultLine(cfg)
	syncFallbackLine(cfg)

	var b strings.Builder
	for _, l := range cfg.HeaderLines {
		b.WriteString(renderLine(l, cfg.Dialect))
		b.WriteByte('\n')
	}
	for _, e := range cfg.Entries {
		if e.MarkedRemoved {
			continue
		}
		for _, l := range e.Lines {
			b.WriteString(renderLine(l, cfg.Dialect))
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// resolveWritablePath follows symlinks (as grubby does, to edit the file
// a chain of symlinks ultimately points at) and returns the final path,
// stopping after a bounded number of hops to avoid an infinite loop on a
// pathological symlink cycle.
func resolveWritablePath(fsys types.FS, path string) (string, error) {
	seen := map[string]bool{}
	for i := 0; i < 40; i++ {
		if seen[path] {
			return "", grubbyerr.New("symlink loop resolving "+path, grubbyerr.WriteFailed)
		}
		seen[path] = true
		info, err := fsys.Lstat(path)
		if err != nil {
			return path, nil
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}
		target, err := fsys.Readlink(path)
		if err != nil {
			return "", grubbyerr.NewFromError(err, grubbyerr.WriteFailed)
		}
		if !strings.HasPrefix(target, "/") {
			idx := strings.LastIndex(path, "/")
			dir := "/"
			if idx >= 0 {
				dir = path[:idx]
			}
			target = dir + "/" + target
		}
		path = target
	}
	return "", grubbyerr.New("too many symlink hops resolving "+path, grubbyerr.WriteFailed)
}

// WriteConfig serializes cfg and writes it atomically: the new content
// lands in "<path>-" first, inheriting the original file's permissions,
// and is then renamed over path (after following any symlink chain), so
// a reader never observes a partially written file (§4.F).
func WriteConfig(fsys types.FS, cfg *Config, path string) error {
	target, err := resolveWritablePath(fsys, path)
	if err != nil {
		return err
	}

	perm := constants.FilePerm
	if info, err := fsys.Stat(target); err == nil {
		perm = info.Mode().Perm()
	}

	data := Serialize(cfg)
	tmp := target + constants.TempFileSuffix
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		return grubbyerr.NewFromError(err, grubbyerr.WriteFailed)
	}
	if err := fsys.Chmod(tmp, perm); err != nil {
		return grubbyerr.NewFromError(err, grubbyerr.WriteFailed)
	}
	if err := fsys.Rename(tmp, target); err != nil {
		return grubbyerr.NewFromError(err, grubbyerr.WriteFailed)
	}
	return nil
}
