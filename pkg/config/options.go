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

// Package config holds the CLI's flag-derived options, the doubling
// read-buffer size and the --dump-config printer. It reads no file of
// its own; /etc/sysconfig/grub is read by package probe.
package config

import (
	"github.com/mitchellh/mapstructure"
	"github.com/rancher/grubby/pkg/constants"
	"github.com/spf13/viper"
)

// Options is every flag grubby accepts, decoded from viper once cobra
// has parsed argv (§6.1).
type Options struct {
	Grub   bool
	Lilo   bool
	Elilo  bool
	Yaboot bool
	Silo   bool
	Zipl   bool

	ConfigFile     string `mapstructure:"config-file"`
	OutputFile     string `mapstructure:"output-file"`
	BootFilesystem string `mapstructure:"boot-filesystem"`

	AddKernel       string `mapstructure:"add-kernel"`
	RemoveKernel    string `mapstructure:"remove-kernel"`
	UpdateKernel    string `mapstructure:"update-kernel"`
	Title           string
	Args            string
	RemoveArgs      string `mapstructure:"remove-args"`
	MbArgs          string `mapstructure:"mbargs"`
	RemoveMbArgs    string `mapstructure:"remove-mbargs"`
	Initrd          string
	CopyDefault     bool `mapstructure:"copy-default"`
	MakeDefault     bool `mapstructure:"make-default"`
	AddMultiboot    string `mapstructure:"add-multiboot"`
	RemoveMultiboot string `mapstructure:"remove-multiboot"`

	DefaultKernel   bool   `mapstructure:"default-kernel"`
	Info            string `mapstructure:"info"`
	SetDefault      string `mapstructure:"set-default"`
	BootloaderProbe bool   `mapstructure:"bootloader-probe"`
	Device          string `mapstructure:"device"`

	ReadBuffer   string `mapstructure:"read-buffer"`
	BadImageOkay bool   `mapstructure:"bad-image-okay"`
	DumpConfig   bool   `mapstructure:"dump-config"`
	Version      bool

	Debug   bool
	Quiet   bool
	Logfile string
}

// FromViper decodes the current viper state into an Options value.
func FromViper(v *viper.Viper) (*Options, error) {
	opts := &Options{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, err
	}
	return opts, nil
}

// DialectFlags projects the six dialect-selector booleans into the map
// shape dialect.Select expects.
func (o *Options) DialectFlags() map[string]bool {
	return map[string]bool{
		"grub":   o.Grub,
		"lilo":   o.Lilo,
		"elilo":  o.Elilo,
		"yaboot": o.Yaboot,
		"silo":   o.Silo,
		"zipl":   o.Zipl,
	}
}

// EffectiveBootFilesystem returns the --boot-filesystem override, or the
// conventional default.
func (o *Options) EffectiveBootFilesystem() string {
	if o.BootFilesystem != "" {
		return o.BootFilesystem
	}
	return "/boot"
}

// EffectiveOutputFile returns --output-file, defaulting to the config
// file's own path when unset (§6.1).
func (o *Options) EffectiveOutputFile() string {
	if o.OutputFile != "" {
		return o.OutputFile
	}
	return o.ConfigFile
}

// IsMutation reports whether any flag that rewrites the config file was
// given.
func (o *Options) IsMutation() bool {
	return o.AddKernel != "" || o.RemoveKernel != "" || o.UpdateKernel != "" || o.SetDefault != ""
}

const defaultReadBufferSize = constants.InitialReadBufferSize
