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
	"github.com/rancher/grubby/pkg/constants"
)

var _ = Describe("SetDefaultByKey / SetFallbackByKey", func() {
	It("points DefaultImage at the entry matching the given key", func() {
		cfg := assembleGrub(grubFixture)
		bootconfig.SetDefaultByKey(cfg, "1", "/boot")
		Expect(cfg.DefaultImage).To(Equal(1))
		Expect(cfg.NoExplicitDefault).To(BeFalse())
	})

	It("falls back to NoDefault when the key matches nothing", func() {
		cfg := assembleGrub(grubFixture)
		bootconfig.SetDefaultByKey(cfg, "/no/such/kernel", "/boot")
		Expect(cfg.DefaultImage).To(Equal(constants.NoDefault))
	})

	It("sets FallbackImage without touching NoExplicitDefault", func() {
		cfg := assembleGrub(grubFixture)
		cfg.NoExplicitDefault = true
		bootconfig.SetFallbackByKey(cfg, "1", "/boot")
		Expect(cfg.FallbackImage).To(Equal(1))
		Expect(cfg.NoExplicitDefault).To(BeTrue())
	})
})

var _ = Describe("MakeNewEntryDefault", func() {
	It("points the default at entry 0 and clears NoExplicitDefault", func() {
		cfg := assembleGrub(grubFixture)
		cfg.NoExplicitDefault = true
		bootconfig.MakeNewEntryDefault(cfg)
		Expect(cfg.DefaultImage).To(Equal(0))
		Expect(cfg.NoExplicitDefault).To(BeFalse())
	})
})

var _ = Describe("MarkRemoved and Compact", func() {
	It("marks every match of a repeated key and compacts them out", func() {
		cfg := assembleGrub(grubFixture)
		bootconfig.MarkRemoved(cfg, "0", "/boot")
		Expect(cfg.Entries[0].MarkedRemoved).To(BeTrue())
		bootconfig.Compact(cfg)
		Expect(cfg.Entries).To(HaveLen(1))
		Expect(cfg.Entries[0].KernelPath()).To(Equal("/boot/vmlinuz-2.6.8"))
	})
})

var _ = Describe("AdjustDefaultForRemovals", func() {
	It("leaves a saved default untouched", func() {
		cfg := assembleGrub(grubFixture)
		cfg.DefaultImage = constants.DefaultSaved
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()
		bootconfig.AdjustDefaultForRemovals(fs, cfg, false, "/boot", false)
		Expect(cfg.DefaultImage).To(Equal(constants.DefaultSaved))
	})

	It("bumps a live default by one when a new kernel was inserted at the front", func() {
		cfg := assembleGrub(grubFixture)
		cfg.DefaultImage = 0
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()
		bootconfig.AdjustDefaultForRemovals(fs, cfg, true, "/boot", false)
		Expect(cfg.DefaultImage).To(Equal(1))
	})

	It("decrements a live default by the number of entries marked removed before it", func() {
		cfg := assembleGrub(grubFixture)
		cfg.Entries[0].MarkedRemoved = true
		cfg.DefaultImage = 1
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()
		bootconfig.AdjustDefaultForRemovals(fs, cfg, false, "/boot", false)
		Expect(cfg.DefaultImage).To(Equal(0))
	})

	It("resets a default pointing at a just-removed entry to the new front entry on insertion", func() {
		cfg := assembleGrub(grubFixture)
		cfg.Entries[0].MarkedRemoved = true
		cfg.DefaultImage = 0
		bootconfig.AddKernel(cfg, bootconfig.AddKernelParams{
			KernelPath: "/boot/vmlinuz-2.6.10", Title: "Fedora (2.6.10)", Prefix: "/boot",
		})
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{})
		Expect(err).ToNot(HaveOccurred())
		defer cleanup()
		bootconfig.AdjustDefaultForRemovals(fs, cfg, true, "/boot", false)
		Expect(cfg.DefaultImage).To(Equal(0))
	})
})

var _ = Describe("AdjustFallbackForRemovals", func() {
	It("clears the fallback once its entry is marked removed", func() {
		cfg := assembleGrub(grubFixture)
		cfg.Entries[1].MarkedRemoved = true
		cfg.FallbackImage = 1
		bootconfig.AdjustFallbackForRemovals(cfg, false)
		Expect(cfg.FallbackImage).To(Equal(constants.NoDefault))
	})

	It("bumps a live fallback by one when a new kernel was inserted", func() {
		cfg := assembleGrub(grubFixture)
		cfg.FallbackImage = 0
		bootconfig.AdjustFallbackForRemovals(cfg, true)
		Expect(cfg.FallbackImage).To(Equal(1))
	})
})
