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
	"github.com/rancher/grubby/pkg/grubbyerr"
)

// KeyAll is the literal locate-key meaning "every non-removed entry";
// callers walk them by calling FindEntry repeatedly with the same cursor.
const KeyAll = "ALL"

func noSuchEntry(key string) error {
	return grubbyerr.New("no entry matches \""+key+"\"", grubbyerr.NoSuchEntry)
}

// stripPrefix removes a leading boot-filesystem prefix from p, if present.
func stripPrefix(p, prefix string) string {
	if prefix == "" {
		return p
	}
	if strings.HasPrefix(p, prefix) {
		return strings.TrimPrefix(p, prefix)
	}
	return p
}

// entryMatchesPath reports whether entry's kernel path, or (for
// multiboot entries) any of its module paths, matches target once both
// sides have the boot-filesystem prefix stripped.
func entryMatchesPath(e *Entry, target, prefix string) bool {
	if stripPrefix(e.KernelPath(), prefix) == target {
		return true
	}
	if e.IsMultiboot {
		for _, l := range e.Lines {
			if l.Kind == dialect.MbModule && stripPrefix(l.Value(1), prefix) == target {
				return true
			}
		}
	}
	return false
}

// parseIndexList parses a "3,5,7"-style comma list of 0-based entry
// indexes. A bare integer is a one-element list.
func parseIndexList(key string) ([]int, bool) {
	parts := strings.Split(key, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// FindEntry resolves key (per §4.D's key grammar: a numeric index list,
// "DEFAULT", "ALL", "TITLE=...", or a bare/prefixed kernel path) to an
// entry. cursor is advanced in place so repeated calls with the same key
// walk successive matches (used by list-valued keys, "ALL" and duplicate
// titles/paths).
func FindEntry(cfg *Config, key, prefix string, cursor *int) (*Entry, int, error) {
	if key == "DEFAULT" {
		idx := cfg.DefaultImage
		if idx < 0 || idx < *cursor || idx >= len(cfg.Entries) || cfg.Entries[idx].MarkedRemoved {
			return nil, -1, noSuchEntry(key)
		}
		*cursor = idx + 1
		return cfg.Entries[idx], idx, nil
	}

	if key == KeyAll {
		for i := *cursor; i < len(cfg.Entries); i++ {
			if cfg.Entries[i].MarkedRemoved {
				continue
			}
			*cursor = i + 1
			return cfg.Entries[i], i, nil
		}
		return nil, -1, noSuchEntry(key)
	}

	if strings.HasPrefix(key, "TITLE=") {
		title := strings.TrimPrefix(key, "TITLE=")
		for i := *cursor; i < len(cfg.Entries); i++ {
			e := cfg.Entries[i]
			if e.MarkedRemoved || !e.HasKernel() {
				continue
			}
			if e.Title() == title {
				*cursor = i + 1
				return e, i, nil
			}
		}
		return nil, -1, noSuchEntry(key)
	}

	if list, ok := parseIndexList(key); ok {
		if *cursor >= len(list) {
			return nil, -1, noSuchEntry(key)
		}
		idx := list[*cursor]
		*cursor++
		if idx < 0 || idx >= len(cfg.Entries) || cfg.Entries[idx].MarkedRemoved || !cfg.Entries[idx].HasKernel() {
			return nil, -1, noSuchEntry(key)
		}
		return cfg.Entries[idx], idx, nil
	}

	target := stripPrefix(key, prefix)
	for i := *cursor; i < len(cfg.Entries); i++ {
		e := cfg.Entries[i]
		if e.MarkedRemoved || !e.HasKernel() {
			continue
		}
		if entryMatchesPath(e, target, prefix) {
			*cursor = i + 1
			return e, i, nil
		}
	}
	return nil, -1, noSuchEntry(key)
}

// ResolveDefaultIndex returns the effective numeric default image,
// collapsing the "saved"/unset sentinels to NoDefault for callers that
// only care about a concrete entry.
func ResolveDefaultIndex(cfg *Config) int {
	if cfg.DefaultImage == constants.DefaultSaved {
		return constants.NoDefault
	}
	return cfg.DefaultImage
}
