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

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// bindFlags registers every flag grubby accepts (§6.1) and mirrors each
// one into viper so pkg/config.FromViper can decode the lot into an
// Options value in one shot.
func bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.Bool("grub", false, "target GRUB Legacy's grub.conf syntax")
	f.Bool("lilo", false, "target LILO's lilo.conf syntax")
	f.Bool("elilo", false, "target ELILO's elilo.conf syntax")
	f.Bool("yaboot", false, "target YABOOT's yaboot.conf syntax")
	f.Bool("silo", false, "target SILO's silo.conf syntax")
	f.Bool("zipl", false, "target ZIPL's zipl.conf syntax")

	f.String("config-file", "", "path to the config file to read (defaults to the dialect's own default path)")
	f.String("output-file", "", "path to write the rewritten config to (defaults to --config-file)")
	f.String("boot-filesystem", "", "prefix stripped from/added to kernel and module paths (defaults to /boot)")

	f.String("add-kernel", "", "path of a new kernel entry to add")
	f.String("remove-kernel", "", "locate-key of the entry to remove")
	f.String("update-kernel", "", "locate-key of the entry(ies) to update in place")
	f.String("title", "", "title for the entry named by --add-kernel")
	f.String("args", "", "kernel arguments to add")
	f.String("remove-args", "", "kernel arguments to remove")
	f.String("mbargs", "", "multiboot kernel arguments to add")
	f.String("remove-mbargs", "", "multiboot kernel arguments to remove")
	f.String("initrd", "", "initrd path for the entry named by --add-kernel")
	f.Bool("copy-default", false, "seed --add-kernel's new entry from the current default entry")
	f.Bool("make-default", false, "make the entry named by --add-kernel the new default")
	f.String("add-multiboot", "", "multiboot kernel/module path to add")
	f.String("remove-multiboot", "", "locate-key of a multiboot module to remove")

	f.Bool("default-kernel", false, "print the default entry's kernel path and exit")
	f.String("info", "", "print the fields of the entry matching this locate-key and exit")
	f.String("set-default", "", "locate-key of the entry to make default")
	f.Bool("bootloader-probe", false, "report which bootloader appears installed on the boot device")
	f.String("device", "", "boot device to probe, overriding /etc/sysconfig/grub's boot=")

	f.String("read-buffer", "", "initial size of the config-file read buffer, e.g. 32KiB")
	f.Bool("bad-image-okay", false, "skip the kernel-file-exists check during suitability/copy-default")
	f.Bool("dump-config", false, "print the parsed config structure instead of writing (debug)")
	f.Bool("version", false, "print the version and exit")

	f.Bool("debug", false, "enable debug logging")
	f.Bool("quiet", false, "suppress stdout logging")
	f.String("logfile", "", "also write logs to this file")

	_ = viper.BindPFlags(f)
}
