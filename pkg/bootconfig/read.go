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
	"io"

	"github.com/rancher/grubby/pkg/grubbyerr"
	"github.com/rancher/grubby/pkg/types"
)

// ReadConfigFile reads path into memory using a doubling buffer rather
// than trusting a single Stat size (§5): the config file may be a
// special file whose reported size is unreliable, so the buffer starts
// at initialSize and doubles each time a read fills it completely.
func ReadConfigFile(fsys types.FS, path string, initialSize int) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, grubbyerr.NewFromError(err, grubbyerr.ReadFailed)
	}
	defer f.Close()

	if initialSize <= 0 {
		initialSize = 16 * 1024
	}
	buf := make([]byte, initialSize)
	total := 0
	for {
		if total == len(buf) {
			buf = append(buf, make([]byte, len(buf))...)
		}
		n, err := f.Read(buf[total:])
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, grubbyerr.NewFromError(err, grubbyerr.ReadFailed)
		}
		if n == 0 {
			break
		}
	}
	return EnsureTerminated(buf[:total]), nil
}
