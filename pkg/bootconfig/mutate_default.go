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
	"github.com/rancher/grubby/pkg/constants"
	"github.com/rancher/grubby/pkg/types"
)

// removedBefore counts the marked-removed entries at indexes strictly
// less than idx.
func removedBefore(entries []*Entry, idx int) int {
	n := 0
	for i := 0; i < idx && i < len(entries); i++ {
		if entries[i].MarkedRemoved {
			n++
		}
	}
	return n
}

func resolvesLive(entries []*Entry, idx int) bool {
	return idx >= 0 && idx < len(entries) && !entries[idx].MarkedRemoved
}

// SetDefaultByKey implements the explicit-key branch of §4.E.3: key is
// resolved with the same grammar as FindEntry, starting at entry 0.
func SetDefaultByKey(cfg *Config, key, prefix string) {
	cursor := 0
	_, idx, err := FindEntry(cfg, key, prefix, &cursor)
	if err != nil {
		cfg.DefaultImage = constants.NoDefault
		return
	}
	cfg.DefaultImage = idx
	cfg.NoExplicitDefault = false
}

// MakeNewEntryDefault implements the "new_is_default" branch of §4.E.3.
func MakeNewEntryDefault(cfg *Config) {
	cfg.DefaultImage = 0
	cfg.NoExplicitDefault = false
}

// AdjustDefaultForRemovals implements the final branch of §4.E.3: absent
// an explicit key or a "make new entry default" request, the existing
// default is kept pointing at the same logical entry across an
// insertion and across any entries marked removed, falling back to a
// suitable template if it no longer resolves to anything live. When
// hasNewKernel is set, the new entry is already at the front of
// cfg.Entries and cfg.DefaultImage still holds the pre-insertion index.
func AdjustDefaultForRemovals(fsys types.FS, cfg *Config, hasNewKernel bool, prefix string, badImageOkay bool) {
	if cfg.DefaultImage == constants.DefaultSaved {
		return
	}

	idx := cfg.DefaultImage
	if hasNewKernel && idx >= 0 {
		idx++
	}
	if resolvesLive(cfg.Entries, idx) {
		idx -= removedBefore(cfg.Entries, idx)
		cfg.DefaultImage = idx
		return
	}

	if hasNewKernel {
		cfg.DefaultImage = 0
		return
	}

	for i, e := range cfg.Entries {
		if e.MarkedRemoved {
			continue
		}
		ok, err := IsSuitableTemplate(fsys, e, prefix, badImageOkay)
		if err != nil {
			continue
		}
		if ok {
			cfg.DefaultImage = i
			return
		}
	}
	cfg.DefaultImage = constants.NoDefault
}

// SetFallbackByKey resolves key and points fallback_image at it.
func SetFallbackByKey(cfg *Config, key, prefix string) {
	cursor := 0
	_, idx, err := FindEntry(cfg, key, prefix, &cursor)
	if err != nil {
		cfg.FallbackImage = constants.NoDefault
		return
	}
	cfg.FallbackImage = idx
}

// AdjustFallbackForRemovals implements §4.E.4: symmetric to the default
// adjustment but with no SAVED concept and no template fallback.
func AdjustFallbackForRemovals(cfg *Config, hasNewKernel bool) {
	idx := cfg.FallbackImage
	if hasNewKernel && idx >= 0 {
		idx++
	}
	if !resolvesLive(cfg.Entries, idx) {
		cfg.FallbackImage = constants.NoDefault
		return
	}
	idx -= removedBefore(cfg.Entries, idx)
	cfg.FallbackImage = idx
}

// MarkRemoved implements §4.E.5: repeatedly locating entries matching
// key and flagging them. Idempotent.
func MarkRemoved(cfg *Config, key, prefix string) {
	cursor := 0
	for {
		entry, _, err := FindEntry(cfg, key, prefix, &cursor)
		if err != nil {
			return
		}
		entry.MarkedRemoved = true
	}
}

// Compact drops every entry marked removed, having already adjusted
// DefaultImage/FallbackImage via AdjustDefaultForRemovals/
// AdjustFallbackForRemovals so they keep naming the right survivor.
func Compact(cfg *Config) {
	survivors := cfg.Entries[:0:0]
	for _, e := range cfg.Entries {
		if !e.MarkedRemoved {
			survivors = append(survivors, e)
		}
	}
	cfg.Entries = survivors
}
