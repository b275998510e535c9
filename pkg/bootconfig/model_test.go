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

var _ = Describe("Entry.Title", func() {
	It("unwraps a ZIPL bracketed section title stored as a single element", func() {
		zipl, _ := dialect.Get(dialect.NameZipl)
		src := "[linux]\n\timage=/boot/vmlinuz\n\tparameters=\"root=/dev/dasda1\"\n"
		lines := bootconfig.Tokenize([]byte(src), zipl)
		cfg := bootconfig.Assemble(lines, zipl, "/etc/zipl.conf")
		Expect(cfg.Entries).To(HaveLen(1))
		Expect(cfg.Entries[0].Title()).To(Equal("linux"))
	})

	It("returns the second element's value for a non-bracketed title", func() {
		cfg := assembleGrub(grubFixture)
		Expect(cfg.Entries[0].Title()).To(Equal("Fedora (2.6.9)"))
	})

	It("returns empty for an entry with no title line", func() {
		lines := bootconfig.Tokenize([]byte("kernel /boot/vmlinuz ro\n"), mustGrub())
		entry := &bootconfig.Entry{Lines: lines}
		Expect(entry.Title()).To(Equal(""))
	})
})

var _ = Describe("Entry.HasKernel and Config.NonRemovedEntries", func() {
	It("reports HasKernel false for an entry lacking one", func() {
		e := &bootconfig.Entry{}
		Expect(e.HasKernel()).To(BeFalse())
	})

	It("excludes marked-removed entries from NonRemovedEntries", func() {
		cfg := assembleGrub(grubFixture)
		cfg.Entries[0].MarkedRemoved = true
		Expect(cfg.NonRemovedEntries()).To(HaveLen(1))
	})
})

func mustGrub() *dialect.Dialect {
	d, _ := dialect.Get(dialect.NameGrub)
	return d
}
