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

var _ = Describe("AddKernel", func() {
	It("inserts the new entry at the front, synthesized from scratch", func() {
		cfg := assembleGrub(grubFixture)
		entry := bootconfig.AddKernel(cfg, bootconfig.AddKernelParams{
			KernelPath: "/boot/vmlinuz-2.6.10",
			Title:      "Fedora (2.6.10)",
			Initrd:     "/boot/initrd-2.6.10.img",
			Args:       "ro quiet",
			Root:       "/dev/sda1",
			Prefix:     "/boot",
		})
		Expect(cfg.Entries[0]).To(BeIdenticalTo(entry))
		Expect(cfg.Entries).To(HaveLen(3))
		Expect(entry.KernelPath()).To(Equal("/vmlinuz-2.6.10"))
		Expect(entry.Title()).To(Equal("Fedora (2.6.10)"))
	})

	It("truncates and disambiguates a LILO-family title past the 15-character limit", func() {
		lilo, _ := dialect.Get(dialect.NameLilo)
		cfg := &bootconfig.Config{Dialect: lilo}
		e1 := bootconfig.AddKernel(cfg, bootconfig.AddKernelParams{
			KernelPath: "/boot/vmlinuz-a", Title: "a-very-long-label-indeed",
		})
		Expect(len(e1.Title())).To(BeNumerically("<=", 15))

		e2 := bootconfig.AddKernel(cfg, bootconfig.AddKernelParams{
			KernelPath: "/boot/vmlinuz-b", Title: "a-very-long-label-indeed",
		})
		Expect(e2.Title()).ToNot(Equal(e1.Title()))
		Expect(len(e2.Title())).To(BeNumerically("<=", 15))
	})

	It("clones a copy-default template and rewrites only its identifying fields", func() {
		cfg := assembleGrub(grubFixture)
		template := cfg.Entries[0]
		entry := bootconfig.AddKernel(cfg, bootconfig.AddKernelParams{
			KernelPath:  "/boot/vmlinuz-2.6.10",
			Title:       "Fedora (2.6.10)",
			Prefix:      "/boot",
			CopyDefault: template,
		})
		Expect(entry.KernelPath()).To(Equal("/vmlinuz-2.6.10"))
		Expect(entry.Title()).To(Equal("Fedora (2.6.10)"))
		// The copied root line is preserved verbatim since no new root was given.
		var rootVal string
		for _, l := range entry.Lines {
			if l.Kind == dialect.Root {
				rootVal = l.Value(1)
			}
		}
		Expect(rootVal).To(Equal("(hd0,0)"))
	})

	It("rewrites a copied template's root line when a new root is supplied", func() {
		cfg := assembleGrub(grubFixture)
		template := cfg.Entries[0]
		entry := bootconfig.AddKernel(cfg, bootconfig.AddKernelParams{
			KernelPath:  "/boot/vmlinuz-2.6.10",
			Title:       "Fedora (2.6.10)",
			Prefix:      "/boot",
			Root:        "(hd1,0)",
			CopyDefault: template,
		})
		var rootVal string
		for _, l := range entry.Lines {
			if l.Kind == dialect.Root {
				rootVal = l.Value(1)
			}
		}
		Expect(rootVal).To(Equal("(hd1,0)"))
	})

	It("marks an entry multiboot when it carries module lines", func() {
		cfg := assembleGrub(grubFixture)
		entry := bootconfig.AddKernel(cfg, bootconfig.AddKernelParams{
			KernelPath:  "/boot/xen.gz",
			Title:       "Xen",
			Prefix:      "/boot",
			Multiboot:   true,
			ModulePaths: []string{"/boot/vmlinuz-2.6.10"},
		})
		Expect(entry.IsMultiboot).To(BeTrue())
	})
})
