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
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sassoftware/ipakit/cmdline/shared"
	"github.com/sassoftware/ipakit/lib/ipa"
)

var ParseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the metadata of an .ipa archive as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  parseCmd,
}

var argIconOut, argPlistOut string

func init() {
	shared.RootCmd.AddCommand(ParseCmd)
	ParseCmd.Flags().StringVar(&argIconOut, "icon-out", "", "Write the application icon to this file instead of including it in the output")
	ParseCmd.Flags().StringVar(&argPlistOut, "plist-out", "", "Write the XML manifest to this file instead of including it in the output")
}

// icon and plist are dropped from the JSON when written to files
type parseOutput struct {
	*ipa.Info
	AppIcon []byte `json:"app_icon,omitempty"`
	Plist   string `json:"plist,omitempty"`
}

func parseCmd(cmd *cobra.Command, args []string) error {
	if err := shared.InitLogging(); err != nil {
		return err
	}
	src, size, closeSrc, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer closeSrc()
	info, err := ipa.Parse(src, size)
	if err != nil {
		return err
	}
	out := parseOutput{Info: info, AppIcon: info.AppIcon, Plist: info.Plist}
	if argIconOut != "" {
		if len(info.AppIcon) == 0 {
			log.Warn().Msg("archive has no resolvable icon, not writing --icon-out")
		} else if err := writeFile(argIconOut, info.AppIcon); err != nil {
			return err
		}
		out.AppIcon = nil
	}
	if argPlistOut != "" {
		if err := writeFile(argPlistOut, []byte(info.Plist)); err != nil {
			return err
		}
		out.Plist = ""
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
