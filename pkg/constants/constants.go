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

package constants

import "os"

const (
	// FilePerm is the default mode used for synthesized files.
	FilePerm os.FileMode = 0644

	// TempFileSuffix is appended to the target path to build the
	// serializer's staging file, per §4.F: "<path>-".
	TempFileSuffix = "-"

	// InitialReadBufferSize is the starting size of the doubling buffer
	// used to read a config file into memory (§5).
	InitialReadBufferSize = 16 * 1024

	// SysconfigGrubPath is the default location of the plain key=value
	// file consulted by the probe (§6.3).
	SysconfigGrubPath = "/etc/sysconfig/grub"

	// ProcMdstatPath is the kernel's RAID status file (§6.3).
	ProcMdstatPath = "/proc/mdstat"

	// LiloBootSectorPath and GrubStage1Path are the reference boot
	// sectors compared against in §4.G.
	LiloBootSectorPath = "/boot/boot.b"
	GrubStage1Path     = "/boot/grub/stage1"

	// BootSectorSize is the number of bytes read/compared for an
	// installed-loader probe.
	BootSectorSize = 512

	// JumpCompareSize is the number of bytes compared at the decoded
	// jump offset.
	JumpCompareSize = 128

	// DefaultSaved and NoDefault are the sentinels for
	// Config.default_image described in §3.
	NoDefault    = -1
	DefaultSaved = -2
)

// Version is printed by --version and is otherwise inert.
const Version = "grubby-go 1.0.0"
