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
	"strings"
	"syscall"

	"github.com/rancher/grubby/pkg/dialect"
	"github.com/rancher/grubby/pkg/grubbyerr"
	"github.com/rancher/grubby/pkg/types"
)

// rootSpecOf walks an entry's Kernel root=, Root line, KernelArgs root=,
// and (for multiboot entries) MbModule root= in that cascade order,
// returning the first one present (§4.H).
func rootSpecOf(entry *Entry) string {
	if k := entry.firstLineOfKind(dialect.Kernel); k != nil {
		for _, e := range k.Elements[1:] {
			if strings.HasPrefix(e.Token, "root=") {
				return strings.TrimPrefix(e.Token, "root=")
			}
		}
	}
	if r := entry.firstLineOfKind(dialect.Root); r != nil {
		return r.Value(1)
	}
	if a := entry.firstLineOfKind(dialect.KernelArgs); a != nil {
		for _, e := range a.Elements[1:] {
			if strings.HasPrefix(e.Token, "root=") {
				return strings.TrimPrefix(e.Token, "root=")
			}
		}
	}
	if entry.IsMultiboot {
		for _, l := range entry.Lines {
			if l.Kind == dialect.MbModule {
				for _, e := range l.Elements[1:] {
					if strings.HasPrefix(e.Token, "root=") {
						return strings.TrimPrefix(e.Token, "root=")
					}
				}
			}
		}
	}
	return ""
}

// blockDeviceNumber returns the major/minor device number a special
// file (e.g. /dev/sda1) represents.
func blockDeviceNumber(info interface{ Sys() interface{} }) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Rdev), true
}

// containingDeviceNumber returns the device number of the filesystem a
// path (e.g. "/") is mounted from.
func containingDeviceNumber(info interface{ Sys() interface{} }) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Dev), true
}

// IsSuitableTemplate implements §4.H: a template entry is suitable for
// --copy-default only if its kernel file exists under prefix (unless
// badImageOkay) and its root device, resolved through the Kernel/Root/
// KernelArgs/MbModule cascade, names the same block device the running
// system's "/" is mounted from.
func IsSuitableTemplate(fsys types.FS, entry *Entry, prefix string, badImageOkay bool) (bool, error) {
	k := entry.firstLineOfKind(dialect.Kernel)
	if k == nil || len(k.Elements) < 2 {
		return false, nil
	}
	kpath := k.Value(1)
	full := prefix + kpath
	if !badImageOkay {
		if _, err := fsys.Stat(full); err != nil {
			return false, nil
		}
	}

	spec := rootSpecOf(entry)
	if spec == "" {
		return false, nil
	}
	if !strings.HasPrefix(spec, "/dev/") {
		// LABEL=/UUID=-style specifiers don't resolve to a device node
		// without a device-mapper lookup this editor doesn't perform, so
		// the entry fails the "resolves to a real device" requirement.
		return false, nil
	}

	devInfo, err := fsys.Stat(spec)
	if err != nil {
		return false, grubbyerr.NewFromError(err, grubbyerr.ProbeIoFailed)
	}
	rootInfo, err := fsys.Stat("/")
	if err != nil {
		return false, grubbyerr.NewFromError(err, grubbyerr.ProbeIoFailed)
	}

	devRdev, ok1 := blockDeviceNumber(devInfo)
	rootDev, ok2 := containingDeviceNumber(rootInfo)
	if !ok1 || !ok2 {
		return false, nil
	}
	return devRdev == rootDev, nil
}
