//
// Copyright (c) SAS Institute Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package ipacmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sassoftware/ipakit/cmdline/shared"
	"github.com/sassoftware/ipakit/lib/atomicfile"
	"github.com/sassoftware/ipakit/lib/iconconv"
	"github.com/sassoftware/ipakit/lib/ipa"
)

var CreateCmd = &cobra.Command{
	Use:   "create FILE",
	Short: "Write a copy of an .ipa archive with new identity, settings and icon",
	Args:  cobra.ExactArgs(1),
	RunE:  createCmd,
}

var (
	argOutput, argName, argBundleID, argVersion string
	argPlist, argIcon                           string
	argRemoveDeviceLimit, argRemoveURLSchemes   bool
	argFileSharing, argNoProgress               bool
	argLevel                                    int
	argExclude                                  []string
)

func init() {
	shared.RootCmd.AddCommand(CreateCmd)
	addCreateFlags(CreateCmd.Flags())
	_ = CreateCmd.MarkFlagRequired("output")
}

func addCreateFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&argOutput, "output", "o", "", "Write the new archive to this file, or - for stdout")
	fs.StringVar(&argName, "name", "", "Bundle name")
	fs.StringVar(&argBundleID, "bundle-id", "", "Bundle identifier")
	fs.StringVar(&argVersion, "version", "", "Short version string")
	fs.StringVar(&argPlist, "plist", "", "Info.plist to rewrite. Defaults to the one inside the archive")
	fs.StringVar(&argIcon, "icon", "", "PNG or JPEG image to install as the application icon")
	fs.BoolVar(&argRemoveDeviceLimit, "remove-device-limit", false, "Lower the minimum OS version to "+ipa.MinimumOSFloor)
	fs.BoolVar(&argRemoveURLSchemes, "remove-url-schemes", false, "Remove registered URL schemes")
	fs.BoolVar(&argFileSharing, "file-sharing", false, "Enable iTunes file sharing and the document browser")
	fs.StringArrayVar(&argExclude, "exclude", nil, "Drop archive entries matching this path pattern (repeatable)")
	fs.IntVar(&argLevel, "level", 0, "Deflate compression level, 1-9 (default from config)")
	fs.BoolVar(&argNoProgress, "no-progress", false, "Don't report progress")
}

func createCmd(cmd *cobra.Command, args []string) error {
	if err := shared.InitLogging(); err != nil {
		return err
	}
	if argOutput == args[0] && argOutput != "-" {
		return errors.New("output must not be the same file as the input")
	}
	src, size, closeSrc, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer closeSrc()

	opts := ipa.CreateOptions{
		Name:              argName,
		BundleID:          argBundleID,
		Version:           argVersion,
		RemoveDeviceLimit: argRemoveDeviceLimit,
		RemoveURLSchemes:  argRemoveURLSchemes,
		EnableFileSharing: argFileSharing,
		CompressionLevel:  shared.CurrentConfig.Create.CompressionLevel,
		ChunkSize:         shared.CurrentConfig.Create.ChunkSize,
		Exclude:           append(append([]string(nil), shared.CurrentConfig.Create.Exclude...), argExclude...),
		Logger:            &log.Logger,
	}
	if cmd.Flags().Changed("level") {
		opts.CompressionLevel = ipa.ClampLevel(argLevel)
	}
	if argPlist != "" {
		opts.Manifest, err = shared.ReadFile(argPlist)
	} else {
		opts.Manifest, err = ipa.ExtractManifest(src, size)
	}
	if err != nil {
		return err
	}
	if argIcon != "" {
		if opts.Icon, err = shared.ReadFile(argIcon); err != nil {
			return err
		}
		if err := iconconv.Check(opts.Icon); err != nil {
			return fmt.Errorf("%s: %w", argIcon, err)
		}
	}
	var bar *progressBar
	if !argNoProgress {
		bar = newProgressBar(cmd.ErrOrStderr(), log.Logger)
		opts.Progress = bar
	}

	out, err := atomicfile.WriteAny(argOutput)
	if err != nil {
		return err
	}
	defer out.Close()
	err = ipa.Create(src, size, out, opts)
	if bar != nil {
		bar.Done()
	}
	if err != nil {
		return err
	}
	if err := out.Commit(); err != nil {
		return err
	}
	log.Debug().Str("output", argOutput).Msg("archive written")
	return nil
}
