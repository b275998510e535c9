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

package bootconfig_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rancher/grubby/pkg/bootconfig"
	"github.com/rancher/grubby/pkg/dialect"
)

var _ = Describe("Serialize", func() {
	It("reproduces an unmodified config byte-for-byte", func() {
		cfg := assembleGrub(grubFixture)
		Expect(string(bootconfig.Serialize(cfg))).To(Equal(grubFixture))
	})

	It("suppresses an absent default that still resolves to entry 0", func() {
		src := "title only\n\troot (hd0,0)\n\tkernel /boot/vmlinuz ro\n"
		cfg := assembleGrub(src)
		cfg.DefaultImage = 0
		Expect(string(bootconfig.Serialize(cfg))).To(Equal(src))
	})

	It("reinstates quotes around a LILO append value it stripped on read", func() {
		lilo, _ := dialect.Get(dialect.NameLilo)
		src := "image=/boot/vmlinuz\n\tlabel=linux\n\troot=/dev/sda1\n\tappend=\"ro quiet\"\n"
		lines := bootconfig.Tokenize([]byte(src), lilo)
		cfg := bootconfig.Assemble(lines, lilo, "/etc/lilo.conf")
		Expect(string(bootconfig.Serialize(cfg))).To(Equal(src))
	})

	It("synthesizes a new default line with a literal '=' separator even for grub", func() {
		src := "title only\n\troot (hd0,0)\n\tkernel /boot/vmlinuz ro\ntitle second\n\troot (hd0,0)\n\tkernel /boot/vmlinuz2 ro\n"
		cfg := assembleGrub(src)
		bootconfig.SetDefaultByKey(cfg, "1", "/boot")
		out := string(bootconfig.Serialize(cfg))
		Expect(out).To(ContainSubstring("default=1\n"))
	})

	It("updates an existing default line in place rather than duplicating it", func() {
		cfg := assembleGrub(grubFixture)
		bootconfig.SetDefaultByKey(cfg, "1", "/boot")
		out := string(bootconfig.Serialize(cfg))
		Expect(strings.Count(out, "default")).To(Equal(1))
	})
})
