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
	"bytes"
	"io"

	"github.com/rancher/grubby/pkg/constants"
	"github.com/rancher/grubby/pkg/grubbyerr"
	"github.com/rancher/grubby/pkg/types"
)

// jumpTarget decodes the x86 jump instruction at the start of a boot
// sector and returns the byte offset it lands on (§4.G): a short jump
// (0xEB disp8), or a near jump/call (0xE9/0xE8 disp16, little-endian),
// optionally preceded by one filler byte.
func jumpTarget(sector []byte) (int, bool) {
	lead := 0
	if len(sector) > 0 && sector[0] != 0xEB && sector[0] != 0xE9 && sector[0] != 0xE8 {
		lead = 1
	}
	b := sector[lead:]
	if len(b) < 3 {
		return 0, false
	}
	switch b[0] {
	case 0xEB:
		return lead + 2 + int(int8(b[1])), true
	case 0xE9, 0xE8:
		disp := int16(uint16(b[1]) | uint16(b[2])<<8)
		return lead + 3 + int(disp), true
	default:
		return 0, false
	}
}

// readBootSector reads the first constants.BootSectorSize bytes of
// path.
func readBootSector(fsys types.FS, path string) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, constants.BootSectorSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

// sectorsMatch implements the §4.G device comparison: the first three
// bytes must match, then the jump offset decoded from reference alone
// is applied to both buffers and their 128-byte tails there must match.
func sectorsMatch(reference, candidate []byte) bool {
	if len(reference) < 3 || len(candidate) < 3 {
		return false
	}
	if !bytes.Equal(reference[:3], candidate[:3]) {
		return false
	}
	offset, ok := jumpTarget(reference)
	if !ok {
		return false
	}
	refSlice := safeSlice(reference, offset, offset+constants.JumpCompareSize)
	candSlice := safeSlice(candidate, offset, offset+constants.JumpCompareSize)
	if len(refSlice) == 0 || len(refSlice) != len(candSlice) {
		return false
	}
	return bytes.Equal(refSlice, candSlice)
}

func safeSlice(b []byte, start, end int) []byte {
	if start < 0 || start > len(b) || end < start {
		return nil
	}
	if end > len(b) {
		end = len(b)
	}
	return b[start:end]
}

// DeviceMatchesLoader reports whether the boot sector at devicePath was
// written by the loader whose reference stage lives at referencePath
// (e.g. constants.GrubStage1Path or constants.LiloBootSectorPath).
// Failures to open or read either side surface as ProbeIoFailed, the
// "1" result code of §4.G, distinct from a clean "not installed".
func DeviceMatchesLoader(fsys types.FS, devicePath, referencePath string) (bool, error) {
	reference, err := readBootSector(fsys, referencePath)
	if err != nil {
		return false, grubbyerr.NewFromError(err, grubbyerr.ProbeIoFailed)
	}
	candidate, err := readBootSector(fsys, devicePath)
	if err != nil {
		return false, grubbyerr.NewFromError(err, grubbyerr.ProbeIoFailed)
	}
	return sectorsMatch(reference, candidate), nil
}
