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

package config_test

import (
	"github.com/spf13/viper"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rancher/grubby/pkg/config"
)

func newViperFor(settings map[string]interface{}) *viper.Viper {
	v := viper.New()
	for k, val := range settings {
		v.Set(k, val)
	}
	return v
}

var _ = Describe("FromViper", func() {
	It("decodes hyphenated flag names into their mapstructure-tagged fields", func() {
		v := newViperFor(map[string]interface{}{
			"add-kernel":  "/boot/vmlinuz-new",
			"config-file": "/etc/lilo.conf",
			"make-default": true,
		})
		opts, err := config.FromViper(v)
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.AddKernel).To(Equal("/boot/vmlinuz-new"))
		Expect(opts.ConfigFile).To(Equal("/etc/lilo.conf"))
		Expect(opts.MakeDefault).To(BeTrue())
	})

	It("decodes an untagged field by its lowercased name", func() {
		v := newViperFor(map[string]interface{}{"title": "My Entry"})
		opts, err := config.FromViper(v)
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.Title).To(Equal("My Entry"))
	})
})

var _ = Describe("DialectFlags", func() {
	It("projects the six selector booleans by their lowercase dialect name", func() {
		opts := &config.Options{Zipl: true}
		flags := opts.DialectFlags()
		Expect(flags["zipl"]).To(BeTrue())
		Expect(flags["grub"]).To(BeFalse())
	})
})

var _ = Describe("EffectiveBootFilesystem and EffectiveOutputFile", func() {
	It("defaults the boot filesystem to /boot", func() {
		opts := &config.Options{}
		Expect(opts.EffectiveBootFilesystem()).To(Equal("/boot"))
	})

	It("honors an explicit boot-filesystem override", func() {
		opts := &config.Options{BootFilesystem: "/altboot"}
		Expect(opts.EffectiveBootFilesystem()).To(Equal("/altboot"))
	})

	It("falls back to the config file path when no output file is given", func() {
		opts := &config.Options{ConfigFile: "/etc/lilo.conf"}
		Expect(opts.EffectiveOutputFile()).To(Equal("/etc/lilo.conf"))
	})
})

var _ = Describe("IsMutation", func() {
	It("is false when no mutating flag is set", func() {
		Expect((&config.Options{}).IsMutation()).To(BeFalse())
	})

	It("is true when add-kernel is set", func() {
		Expect((&config.Options{AddKernel: "/boot/vmlinuz"}).IsMutation()).To(BeTrue())
	})
})

var _ = Describe("ReadBufferSize", func() {
	It("falls back to the built-in size when unset", func() {
		Expect(config.ReadBufferSize(&config.Options{})).To(BeNumerically(">", 0))
	})

	It("parses a human-readable size override", func() {
		Expect(config.ReadBufferSize(&config.Options{ReadBuffer: "32KiB"})).To(Equal(32 * 1024))
	})

	It("falls back on an unparsable override", func() {
		fallback := config.ReadBufferSize(&config.Options{})
		Expect(config.ReadBufferSize(&config.Options{ReadBuffer: "not-a-size"})).To(Equal(fallback))
	})
})

var _ = Describe("Dump", func() {
	It("renders a non-empty representation of any value", func() {
		Expect(config.Dump(&config.Options{Title: "x"})).ToNot(BeEmpty())
	})
})
