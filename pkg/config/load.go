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

package config

import (
	units "github.com/docker/go-units"
	"github.com/rancher/grubby/pkg/constants"
	"github.com/sanity-io/litter"
)

// ReadBufferSize parses the --read-buffer override (accepting forms
// like "32KiB", "1MB") used to seed the doubling buffer that reads the
// config file into memory (§5). An empty or unparsable value falls back
// to the built-in starting size.
func ReadBufferSize(o *Options) int {
	if o.ReadBuffer == "" {
		return constants.InitialReadBufferSize
	}
	n, err := units.RAMInBytes(o.ReadBuffer)
	if err != nil || n <= 0 {
		return constants.InitialReadBufferSize
	}
	return int(n)
}

// Dump pretty-prints v (the parsed Options, or a *bootconfig.Config) for
// --dump-config, a debugging aid that never affects program behavior.
func Dump(v interface{}) string {
	return litter.Sdump(v)
}
