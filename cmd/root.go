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

// Package cmd wires the single flat command-line surface described in
// §6.1 onto the bootconfig/dialect/probe packages.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	vfs "github.com/twpayne/go-vfs"

	"github.com/rancher/grubby/pkg/bootconfig"
	"github.com/rancher/grubby/pkg/config"
	"github.com/rancher/grubby/pkg/constants"
	"github.com/rancher/grubby/pkg/dialect"
	"github.com/rancher/grubby/pkg/grubbyerr"
	"github.com/rancher/grubby/pkg/probe"
	"github.com/rancher/grubby/pkg/types"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grubby",
		Short:         "Edit GRUB Legacy, LILO, ELILO, YABOOT, SILO and ZIPL boot loader configuration files in place",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGrubby,
	}
	bindFlags(cmd)
	return cmd
}

var rootCmd = NewRootCmd()

// Execute runs the root command and translates any GrubbyError into its
// carried exit code, matching §7's taxonomy.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		switch t := err.(type) {
		case *grubbyerr.GrubbyError:
			fmt.Fprintln(os.Stderr, t.Error())
			os.Exit(t.ExitCode())
		default:
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func newLogger(opts *config.Options) types.Logger {
	logger := types.NewLogger()
	if opts.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	if opts.Quiet {
		logger.SetOutput(io.Discard)
	}
	if opts.Logfile != "" {
		if f, err := os.OpenFile(opts.Logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, constants.FilePerm); err == nil {
			logger.SetOutput(f)
		}
	}
	return logger
}

func runGrubby(cmd *cobra.Command, args []string) error {
	opts, err := config.FromViper(viper.GetViper())
	if err != nil {
		return grubbyerr.NewFromError(err, grubbyerr.ConflictingFlags)
	}

	if opts.Version {
		fmt.Println(constants.Version)
		return nil
	}

	if !opts.IsMutation() && !opts.DefaultKernel && opts.Info == "" && !opts.BootloaderProbe {
		return fmt.Errorf("no action specified")
	}

	logger := newLogger(opts)

	normalizeSetDefault(opts)
	if err := validate(opts); err != nil {
		return err
	}

	d, err := dialect.Select(opts.DialectFlags())
	if err != nil {
		return err
	}

	var fsys types.FS = vfs.OSFS

	if opts.BootloaderProbe {
		return runProbe(fsys, opts, logger)
	}

	configPath := opts.ConfigFile
	if configPath == "" {
		configPath = d.DefaultConfigPath
	}

	data, err := bootconfig.ReadConfigFile(fsys, configPath, config.ReadBufferSize(opts))
	if err != nil {
		return err
	}
	lines := bootconfig.Tokenize(data, d)
	cfg := bootconfig.Assemble(lines, d, configPath)

	prefix := opts.EffectiveBootFilesystem()

	if opts.DefaultKernel {
		return printDefaultKernel(cfg)
	}
	if opts.Info != "" {
		return printInfo(cfg, opts.Info, prefix)
	}

	if err := applyMutations(fsys, cfg, opts, prefix, logger); err != nil {
		return err
	}

	if opts.DumpConfig {
		fmt.Println(config.Dump(cfg))
		return nil
	}

	if !opts.IsMutation() {
		return nil
	}

	if cfg.WouldBeEmpty() {
		return grubbyerr.New("refusing to write a config that would have no surviving entries", grubbyerr.WouldLeaveEmpty)
	}

	bootconfig.Compact(cfg)

	out := opts.EffectiveOutputFile()
	if out == "" {
		out = configPath
	}
	if err := bootconfig.WriteConfig(fsys, cfg, out); err != nil {
		return err
	}
	logger.Infof("wrote %s", out)
	return nil
}

// normalizeSetDefault implements §6.1's silent rewrite: asking to both
// add a kernel and set it as the default by the same key is just
// --make-default spelled differently.
func normalizeSetDefault(opts *config.Options) {
	if opts.SetDefault != "" && opts.AddKernel != "" && opts.SetDefault == opts.AddKernel {
		opts.MakeDefault = true
		opts.SetDefault = ""
	}
}

func validate(opts *config.Options) error {
	conflict := func(msg string) error {
		return grubbyerr.New(msg, grubbyerr.ConflictingFlags)
	}

	mutating := opts.AddKernel != "" || opts.RemoveKernel != "" || opts.UpdateKernel != "" || opts.SetDefault != ""

	if opts.BootloaderProbe && (mutating || opts.Info != "" || opts.DefaultKernel) {
		return conflict("--bootloader-probe cannot be combined with any mutation, --info, or --default-kernel")
	}
	if (opts.DefaultKernel || opts.Info != "") && mutating {
		return conflict("--default-kernel/--info cannot be combined with a mutation")
	}
	if opts.AddKernel != "" && opts.Title == "" {
		return conflict("--add-kernel requires --title")
	}
	if opts.AddKernel == "" {
		if opts.Title != "" {
			return conflict("--title requires --add-kernel")
		}
		if opts.Initrd != "" {
			return conflict("--initrd requires --add-kernel")
		}
		if opts.CopyDefault {
			return conflict("--copy-default requires --add-kernel")
		}
		if opts.MakeDefault {
			return conflict("--make-default requires --add-kernel")
		}
	}
	if opts.AddKernel != "" && opts.UpdateKernel != "" {
		return conflict("--add-kernel and --update-kernel are mutually exclusive")
	}
	if opts.MakeDefault && opts.SetDefault != "" {
		return conflict("--make-default and --set-default are mutually exclusive")
	}
	if opts.SetDefault != "" && opts.RemoveKernel != "" && opts.SetDefault == opts.RemoveKernel {
		return conflict("--set-default and --remove-kernel name the same entry")
	}
	return nil
}

func printDefaultKernel(cfg *bootconfig.Config) error {
	idx := bootconfig.ResolveDefaultIndex(cfg)
	if idx < 0 || idx >= len(cfg.Entries) {
		return grubbyerr.New("no default entry", grubbyerr.NoSuchEntry)
	}
	fmt.Println(cfg.Entries[idx].KernelPath())
	return nil
}

// printInfo implements §6.1's --info surface: index=, kernel=, args="…",
// root=, initrd= for each matching entry, grounded on the original tool's
// displayEntry.
func printInfo(cfg *bootconfig.Config, key, prefix string) error {
	cursor := 0
	any := false
	for {
		entry, idx, err := bootconfig.FindEntry(cfg, key, prefix, &cursor)
		if err != nil {
			if any {
				return nil
			}
			return err
		}
		any = true

		info := entry.Display(prefix)
		fmt.Printf("index=%d\n", idx)
		fmt.Printf("kernel=%s\n", info.Kernel)
		if info.HasArgs {
			fmt.Printf("args=\"%s\"\n", info.Args)
		}
		if info.HasRoot {
			fmt.Printf("root=%s\n", info.Root)
		}
		if info.HasInitrd {
			fmt.Printf("initrd=%s\n", info.Initrd)
		}
	}
}

func runProbe(fsys types.FS, opts *config.Options, logger types.Logger) error {
	result, err := probe.ProbeDevice(fsys, opts.Device)
	if err != nil {
		return err
	}
	switch {
	case result.Lilo:
		fmt.Println("lilo")
	case result.Grub:
		fmt.Println("grub")
	default:
		fmt.Println("neither")
	}
	logger.Debugf("probe result: grub=%v lilo=%v device=%s", result.Grub, result.Lilo, opts.Device)
	return nil
}

func applyMutations(fsys types.FS, cfg *bootconfig.Config, opts *config.Options, prefix string, logger types.Logger) error {
	hasNewKernel := opts.AddKernel != ""

	if hasNewKernel {
		var template *bootconfig.Entry
		if opts.CopyDefault {
			idx := bootconfig.ResolveDefaultIndex(cfg)
			if idx < 0 || idx >= len(cfg.Entries) {
				return grubbyerr.New("no default entry available to copy", grubbyerr.TemplateUnavailable)
			}
			template = cfg.Entries[idx]
			if ok, err := bootconfig.IsSuitableTemplate(fsys, template, prefix, opts.BadImageOkay); err != nil {
				return err
			} else if !ok {
				return grubbyerr.New("default entry is not a suitable template for --copy-default", grubbyerr.TemplateUnavailable)
			}
		}

		params := bootconfig.AddKernelParams{
			KernelPath:  opts.AddKernel,
			Title:       opts.Title,
			Initrd:      opts.Initrd,
			Args:        opts.Args,
			Root:        rootFromArgs(opts.Args),
			Prefix:      prefix,
			CopyDefault: template,
			MakeDefault: opts.MakeDefault,
			Multiboot:   opts.AddMultiboot != "",
		}
		if opts.AddMultiboot != "" {
			params.ModulePaths = []string{strings.TrimPrefix(opts.AddMultiboot, prefix)}
		}
		bootconfig.AddKernel(cfg, params)
		logger.Infof("added entry %q", opts.Title)
	}

	if opts.RemoveKernel != "" {
		bootconfig.MarkRemoved(cfg, opts.RemoveKernel, prefix)
	}

	if opts.UpdateKernel != "" {
		cursor := 0
		for {
			entry, _, err := bootconfig.FindEntry(cfg, opts.UpdateKernel, prefix, &cursor)
			if err != nil {
				break
			}
			if opts.Args != "" || opts.RemoveArgs != "" {
				bootconfig.UpdateArgs(cfg, entry, opts.Args, opts.RemoveArgs)
			}
			if opts.MbArgs != "" || opts.RemoveMbArgs != "" {
				bootconfig.UpdateArgs(cfg, entry, opts.MbArgs, opts.RemoveMbArgs)
			}
			if opts.UpdateKernel != bootconfig.KeyAll {
				break
			}
		}
	}

	if opts.RemoveMultiboot != "" {
		bootconfig.MarkRemoved(cfg, opts.RemoveMultiboot, prefix)
	}

	switch {
	case opts.MakeDefault:
		bootconfig.MakeNewEntryDefault(cfg)
	case opts.SetDefault != "":
		bootconfig.SetDefaultByKey(cfg, opts.SetDefault, prefix)
	default:
		bootconfig.AdjustDefaultForRemovals(fsys, cfg, hasNewKernel, prefix, opts.BadImageOkay)
	}
	bootconfig.AdjustFallbackForRemovals(cfg, hasNewKernel)

	return nil
}

// rootFromArgs extracts the value of the first "root=..." token from a
// whitespace-separated argument string, letting --add-kernel --args
// "root=/dev/sda1 ro" seed the new entry's dedicated Root line (§4.E.1).
// Any root= value is taken, whatever its form; the token also stays in
// the args passed to AddKernel.
func rootFromArgs(args string) string {
	for _, tok := range strings.Fields(args) {
		if strings.HasPrefix(tok, "root=") {
			return strings.TrimPrefix(tok, "root=")
		}
	}
	return ""
}
