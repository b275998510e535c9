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

// Package dialect holds the immutable per-bootloader syntax descriptions
// (§4.A) shared by the tokenizer, config assembler, mutator and
// serializer. Nothing in this package mutates a Dialect after init().
package dialect

import "runtime"

// LineKind classifies a tokenized source line (§3 Line).
type LineKind int

const (
	Whitespace LineKind = iota
	Title
	Kernel
	Initrd
	Default
	Unknown
	Root
	Fallback
	KernelArgs
	Boot
	BootRoot
	Lba
	MbModule
	Other
	Generic
)

// DefaultRepresentation selects how a dialect's default line encodes the
// default entry.
type DefaultRepresentation int

const (
	Index DefaultRepresentation = iota
	ByTitle
)

// Keyword binds the literal text appearing at the start of a line to the
// line kind it introduces and the separator used when synthesizing it.
type Keyword struct {
	Text      string
	Kind      LineKind
	Separator byte // ' ' or '='
}

// Dialect is the immutable, compile-time description of one bootloader's
// config syntax (§3 Dialect descriptor).
type Dialect struct {
	Name                  string
	DefaultConfigPath     string
	Keywords              []Keyword
	DefaultRepresentation DefaultRepresentation
	SupportsSavedDefault  bool
	EntrySeparatorKind    LineKind
	NeedsBootPrefix       bool
	ArgsInQuotes          bool
	MaxTitleLength        int // 0 means unbounded
	TitlesBracketed       bool
}

// Lookup returns the keyword descriptor matching the given token, if any.
func (d *Dialect) Lookup(token string) (Keyword, bool) {
	for _, kw := range d.Keywords {
		if kw.Text == token {
			return kw, true
		}
	}
	return Keyword{}, false
}

// KeywordForKind returns the first keyword synthesizing the given kind.
func (d *Dialect) KeywordForKind(kind LineKind) (Keyword, bool) {
	for _, kw := range d.Keywords {
		if kw.Kind == kind {
			return kw, true
		}
	}
	return Keyword{}, false
}

const (
	NameGrub   = "grub"
	NameLilo   = "lilo"
	NameElilo  = "elilo"
	NameYaboot = "yaboot"
	NameSilo   = "silo"
	NameZipl   = "zipl"
)

var grub = &Dialect{
	Name:              NameGrub,
	DefaultConfigPath: "/boot/grub/grub.conf",
	Keywords: []Keyword{
		{Text: "title", Kind: Title, Separator: ' '},
		{Text: "root", Kind: Root, Separator: ' '},
		{Text: "default", Kind: Default, Separator: ' '},
		{Text: "fallback", Kind: Fallback, Separator: ' '},
		{Text: "kernel", Kind: Kernel, Separator: ' '},
		{Text: "initrd", Kind: Initrd, Separator: ' '},
		{Text: "module", Kind: MbModule, Separator: ' '},
	},
	DefaultRepresentation: Index,
	SupportsSavedDefault:  true,
	EntrySeparatorKind:    Title,
	NeedsBootPrefix:       true,
	ArgsInQuotes:          false,
	MaxTitleLength:        0,
	TitlesBracketed:       false,
}

var lilo = &Dialect{
	Name:              NameLilo,
	DefaultConfigPath: "/etc/lilo.conf",
	Keywords: []Keyword{
		{Text: "image", Kind: Kernel, Separator: '='},
		{Text: "other", Kind: Kernel, Separator: '='},
		{Text: "label", Kind: Title, Separator: '='},
		{Text: "root", Kind: Root, Separator: '='},
		{Text: "initrd", Kind: Initrd, Separator: '='},
		{Text: "append", Kind: KernelArgs, Separator: '='},
		{Text: "default", Kind: Default, Separator: '='},
		{Text: "fallback", Kind: Fallback, Separator: '='},
		{Text: "boot", Kind: Boot, Separator: '='},
		{Text: "lba", Kind: Lba, Separator: '='},
	},
	DefaultRepresentation: ByTitle,
	SupportsSavedDefault:  false,
	EntrySeparatorKind:    Kernel,
	NeedsBootPrefix:       false,
	ArgsInQuotes:          true,
	MaxTitleLength:        15,
	TitlesBracketed:       false,
}

var elilo = &Dialect{
	Name:              NameElilo,
	DefaultConfigPath: "/etc/elilo.conf",
	Keywords: []Keyword{
		{Text: "image", Kind: Kernel, Separator: '='},
		{Text: "label", Kind: Title, Separator: '='},
		{Text: "root", Kind: Root, Separator: '='},
		{Text: "initrd", Kind: Initrd, Separator: '='},
		{Text: "append", Kind: KernelArgs, Separator: '='},
		{Text: "default", Kind: Default, Separator: '='},
	},
	DefaultRepresentation: ByTitle,
	SupportsSavedDefault:  false,
	EntrySeparatorKind:    Kernel,
	NeedsBootPrefix:       true,
	ArgsInQuotes:          true,
	MaxTitleLength:        0,
	TitlesBracketed:       false,
}

// yabootGenericKeywords lists keywords migrated to the header as Generic lines
// on rewrite (§6.2).
var yabootGenericKeywords = []string{
	"init-message", "partition", "timeout", "install", "delay", "defaultos",
	"enablecdboot", "enableofboot", "enablenetboot", "nonvram", "mntpoint",
	"magicboot", "usemount",
}

var yaboot = newYaboot()

func newYaboot() *Dialect {
	d := &Dialect{
		Name:              NameYaboot,
		DefaultConfigPath: "/etc/yaboot.conf",
		Keywords: []Keyword{
			{Text: "image", Kind: Kernel, Separator: '='},
			{Text: "label", Kind: Title, Separator: '='},
			{Text: "root", Kind: Root, Separator: '='},
			{Text: "initrd", Kind: Initrd, Separator: '='},
			{Text: "append", Kind: KernelArgs, Separator: '='},
			{Text: "default", Kind: Default, Separator: '='},
		},
		DefaultRepresentation: ByTitle,
		SupportsSavedDefault:  false,
		EntrySeparatorKind:    Kernel,
		NeedsBootPrefix:       true,
		ArgsInQuotes:          true,
		MaxTitleLength:        0,
		TitlesBracketed:       false,
	}
	for _, kw := range yabootGenericKeywords {
		d.Keywords = append(d.Keywords, Keyword{Text: kw, Kind: Generic, Separator: '='})
	}
	return d
}

var silo = &Dialect{
	Name:              NameSilo,
	DefaultConfigPath: "/etc/silo.conf",
	Keywords: []Keyword{
		{Text: "image", Kind: Kernel, Separator: '='},
		{Text: "other", Kind: Kernel, Separator: '='},
		{Text: "label", Kind: Title, Separator: '='},
		{Text: "root", Kind: Root, Separator: '='},
		{Text: "initrd", Kind: Initrd, Separator: '='},
		{Text: "append", Kind: KernelArgs, Separator: '='},
		{Text: "default", Kind: Default, Separator: '='},
		{Text: "partition", Kind: Generic, Separator: '='},
	},
	DefaultRepresentation: ByTitle,
	SupportsSavedDefault:  false,
	EntrySeparatorKind:    Kernel,
	NeedsBootPrefix:       false,
	ArgsInQuotes:          true,
	MaxTitleLength:        0,
	TitlesBracketed:       false,
}

var zipl = &Dialect{
	Name:              NameZipl,
	DefaultConfigPath: "/etc/zipl.conf",
	Keywords: []Keyword{
		{Text: "image", Kind: Kernel, Separator: '='},
		{Text: "target", Kind: Generic, Separator: '='},
		{Text: "parameters", Kind: KernelArgs, Separator: '='},
		{Text: "ramdisk", Kind: Initrd, Separator: '='},
		{Text: "default", Kind: Default, Separator: '='},
	},
	DefaultRepresentation: ByTitle,
	SupportsSavedDefault:  false,
	EntrySeparatorKind:    Title,
	NeedsBootPrefix:       false,
	ArgsInQuotes:          true,
	MaxTitleLength:        0,
	TitlesBracketed:       true,
}

// registry is the static table indexed by name (§4.A).
var registry = map[string]*Dialect{
	NameGrub:   grub,
	NameLilo:   lilo,
	NameElilo:  elilo,
	NameYaboot: yaboot,
	NameSilo:   silo,
	NameZipl:   zipl,
}

// Get returns the dialect with the given name.
func Get(name string) (*Dialect, bool) {
	d, ok := registry[name]
	return d, ok
}

// PlatformDefault returns the dialect name this binary would select
// absent an explicit CLI flag, keyed off GOARCH (§4.A).
func PlatformDefault() string {
	switch runtime.GOARCH {
	case "arm64", "ia64":
		return NameElilo
	case "ppc64", "ppc64le":
		return NameYaboot
	case "s390x", "s390":
		return NameZipl
	case "sparc64":
		return NameSilo
	default:
		return NameGrub
	}
}

// Select applies the §4.A precedence: an explicit flag wins; at most one
// flag may be set; absent any flag, the platform default is used.
func Select(flags map[string]bool) (*Dialect, error) {
	var chosen []string
	for name, set := range flags {
		if set {
			chosen = append(chosen, name)
		}
	}
	if len(chosen) > 1 {
		return nil, newConflictingDialects(chosen)
	}
	if len(chosen) == 1 {
		d, ok := Get(chosen[0])
		if !ok {
			return nil, newConflictingDialects(chosen)
		}
		return d, nil
	}
	d, _ := Get(PlatformDefault())
	return d, nil
}
