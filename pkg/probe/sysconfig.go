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

// Package probe implements the installed-loader detection of
// §4.G/§6.3: reading
// /etc/sysconfig/grub, walking /proc/mdstat for RAID members, and
// comparing boot-sector jump targets.
package probe

import (
	"bytes"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rancher/grubby/pkg/types"
)

// SysconfigGrub is the handful of settings grubby consults from
// /etc/sysconfig/grub (§6.3): only "forcelba" and "boot=<device>" are
// recognized.
type SysconfigGrub struct {
	ForceLBA   bool
	BootDevice string
}

// ParseSysconfigGrub reads the legacy key=value sysconfig file. Besides
// "boot", only the literal key "forcelba" is recognized on read.
func ParseSysconfigGrub(fsys types.FS, path string) (SysconfigGrub, error) {
	var cfg SysconfigGrub
	data, err := fsys.ReadFile(path)
	if err != nil {
		return cfg, nil // absence is not an error; the defaults stand
	}
	vals, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return cfg, nil
	}
	if truthy(vals["forcelba"]) {
		cfg.ForceLBA = true
	}
	cfg.BootDevice = strings.TrimSpace(vals["boot"])
	return cfg, nil
}

// DumpSysconfigGrub renders cfg back to the sysconfig file's shape. This
// preserves a deliberate asymmetry with the reader: the reader matches
// the key "forcelba", but the writer emits the bare word "lba" with no
// "=1" and no value, matching the original tool's dumpSysconfigGrub
// exactly.
func DumpSysconfigGrub(cfg SysconfigGrub) []byte {
	var b bytes.Buffer
	if cfg.ForceLBA {
		b.WriteString("lba\n")
	}
	if cfg.BootDevice != "" {
		b.WriteString("boot=" + cfg.BootDevice + "\n")
	}
	return b.Bytes()
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
