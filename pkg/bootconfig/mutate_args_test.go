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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rancher/grubby/pkg/bootconfig"
	"github.com/rancher/grubby/pkg/dialect"
)

var _ = Describe("UpdateArgs", func() {
	It("appends a new token to a grub kernel line's trailing arguments", func() {
		cfg := assembleGrub(grubFixture)
		entry := cfg.Entries[0]
		bootconfig.UpdateArgs(cfg, entry, "quiet", "")
		Expect(entry.KernelPath()).To(Equal("/boot/vmlinuz-2.6.9"))
		k := entry.Lines[2]
		Expect(k.Value(len(k.Elements) - 1)).To(Equal("quiet"))
	})

	It("replaces the value of a repeated key, keeping the last occurrence", func() {
		cfg := assembleGrub(grubFixture)
		entry := cfg.Entries[0]
		bootconfig.UpdateArgs(cfg, entry, "root=/dev/sdb1 root=/dev/sdc1", "")
		rl := findRootLine(entry)
		Expect(rl).ToNot(BeNil())
		Expect(rl.Value(1)).To(Equal("/dev/sdc1"))
	})

	It("removes a matching argument, handing its trailing run to the prior token", func() {
		lilo, _ := dialect.Get(dialect.NameLilo)
		src := "image=/boot/vmlinuz\n\tlabel=linux\n\troot=/dev/sda1\n\tappend=\"ro quiet splash\"\n"
		lines := bootconfig.Tokenize([]byte(src), lilo)
		cfg := bootconfig.Assemble(lines, lilo, "/etc/lilo.conf")
		entry := cfg.Entries[0]
		bootconfig.UpdateArgs(cfg, entry, "", "quiet")
		al := findArgsLine(entry)
		Expect(al).ToNot(BeNil())
		var toks []string
		for _, e := range al.Elements[1:] {
			toks = append(toks, e.Token)
		}
		Expect(toks).To(Equal([]string{"ro", "splash"}))
	})

	It("deletes the args line entirely once removal leaves it bare", func() {
		lilo, _ := dialect.Get(dialect.NameLilo)
		src := "image=/boot/vmlinuz\n\tlabel=linux\n\troot=/dev/sda1\n\tappend=\"ro\"\n"
		lines := bootconfig.Tokenize([]byte(src), lilo)
		cfg := bootconfig.Assemble(lines, lilo, "/etc/lilo.conf")
		entry := cfg.Entries[0]
		bootconfig.UpdateArgs(cfg, entry, "", "ro")
		Expect(findArgsLine(entry)).To(BeNil())
	})

	It("redirects a root= addition to the dedicated Root line and scrubs any stray root= token", func() {
		lilo, _ := dialect.Get(dialect.NameLilo)
		src := "image=/boot/vmlinuz\n\tlabel=linux\n\troot=/dev/sda1\n\tappend=\"ro root=/dev/sda1\"\n"
		lines := bootconfig.Tokenize([]byte(src), lilo)
		cfg := bootconfig.Assemble(lines, lilo, "/etc/lilo.conf")
		entry := cfg.Entries[0]
		bootconfig.UpdateArgs(cfg, entry, "root=/dev/sdb2", "")
		rl := findRootLine(entry)
		Expect(rl.Value(1)).To(Equal("/dev/sdb2"))
		al := findArgsLine(entry)
		Expect(al).ToNot(BeNil())
		Expect(al.Elements).To(HaveLen(2)) // keyword + "ro"
		Expect(al.Elements[1].Token).To(Equal("ro"))
	})
})

func findRootLine(e *bootconfig.Entry) *bootconfig.Line {
	for _, l := range e.Lines {
		if l.Kind == dialect.Root {
			return l
		}
	}
	return nil
}

func findArgsLine(e *bootconfig.Entry) *bootconfig.Line {
	for _, l := range e.Lines {
		if l.Kind == dialect.KernelArgs {
			return l
		}
	}
	return nil
}
