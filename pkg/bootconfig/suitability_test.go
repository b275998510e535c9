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
	"github.com/twpayne/go-vfs/vfst"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rancher/grubby/pkg/bootconfig"
	"github.com/rancher/grubby/pkg/dialect"
)

// Device-number matching in IsSuitableTemplate is exercised against the
// real inode the test filesystem backs each path with (vfst.NewTestFS
// creates a real temporary directory); that makes an exact rootDev==devRdev
// match for a would-be block device unreproducible from a regular file, so
// these cases cover the existence/root-resolution logic the rest of the
// function gates on rather than the final device comparison.
var _ = Describe("IsSuitableTemplate", func() {
	grub, _ := dialect.Get(dialect.NameGrub)

	It("rejects a template whose kernel file is missing", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		cfg := assembleGrub(grubFixture)
		ok, err := bootconfig.IsSuitableTemplate(fs, cfg.Entries[0], "/boot", false)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("bypasses the kernel-existence check when badImageOkay is set", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"dev/sda1": "",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		cfg := assembleGrub(grubFixture)
		_, err = bootconfig.IsSuitableTemplate(fs, cfg.Entries[0], "/boot", true)
		Expect(err).ToNot(HaveOccurred())
	})

	It("rejects a LABEL=/UUID= root specifier as unresolvable to a device node", func() {
		src := "title only\n\troot (hd0,0)\n\tkernel /boot/vmlinuz ro root=LABEL=/\n"
		lines := bootconfig.Tokenize([]byte(src), grub)
		cfg := bootconfig.Assemble(lines, grub, "/boot/grub/grub.conf")

		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"boot/vmlinuz": "",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		ok, err := bootconfig.IsSuitableTemplate(fs, cfg.Entries[0], "", false)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("rejects an entry with no root specifier at all", func() {
		src := "title only\n\tkernel /boot/vmlinuz ro\n"
		lines := bootconfig.Tokenize([]byte(src), grub)
		cfg := bootconfig.Assemble(lines, grub, "/boot/grub/grub.conf")

		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"boot/vmlinuz": "",
		})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()

		ok, err := bootconfig.IsSuitableTemplate(fs, cfg.Entries[0], "", false)
		Expect(err).ToNot(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})
