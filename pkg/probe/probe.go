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

package probe

import (
	"strings"

	"github.com/rancher/grubby/pkg/constants"
	"github.com/rancher/grubby/pkg/types"
)

// Result is which bootloader's signature was found installed on the
// configured boot device (§4.G).
type Result struct {
	Grub bool
	Lilo bool
}

// raidMemberDevices expands an md device name (e.g. "/dev/md0") into its
// backing member devices via /proc/mdstat; a non-md device maps to
// itself (§4.G, §6.3).
func raidMemberDevices(fsys types.FS, device string) ([]string, error) {
	if !strings.HasPrefix(device, "/dev/md") {
		return []string{device}, nil
	}
	base := strings.TrimPrefix(device, "/dev/")
	raid, err := ReadRaidMembers(fsys, constants.ProcMdstatPath)
	if err != nil {
		return nil, err
	}
	if members, ok := raid[base]; ok && len(members) > 0 {
		return members, nil
	}
	return []string{device}, nil
}

// Probe implements §4.G: LILO is detected by comparing /boot/boot.b
// against the sysconfig boot= device (walking RAID members if it names
// an md array, succeeding if any one member matches); GRUB is detected
// by comparing /boot/grub/stage1 against that same device directly. A
// single device's read failure propagates immediately — per the probe's
// error-propagation policy, no other device is then attempted.
func Probe(fsys types.FS) (Result, error) {
	return ProbeDevice(fsys, "")
}

// ProbeDevice is Probe with the boot device named explicitly rather than
// read from /etc/sysconfig/grub, for the CLI's --device override.
func ProbeDevice(fsys types.FS, deviceOverride string) (Result, error) {
	var result Result

	device := deviceOverride
	if device == "" {
		sc, err := ParseSysconfigGrub(fsys, constants.SysconfigGrubPath)
		if err != nil {
			return result, err
		}
		device = sc.BootDevice
	}
	if device == "" {
		return result, nil
	}

	members, err := raidMemberDevices(fsys, device)
	if err != nil {
		return result, err
	}
	for _, member := range members {
		ok, err := DeviceMatchesLoader(fsys, member, constants.LiloBootSectorPath)
		if err != nil {
			return result, err
		}
		if ok {
			result.Lilo = true
			break
		}
	}

	if ok, err := DeviceMatchesLoader(fsys, device, constants.GrubStage1Path); err != nil {
		return result, err
	} else if ok {
		result.Grub = true
	}

	return result, nil
}
