/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/medtran/internal/speech"
)

const voicesTimeout = 10 * time.Second

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List speech synthesizer voices",
	Long: `List the voices espeak-ng reports, marking the ones /text-to-speech
uses for "male" (first) and "female" (last).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		synth := speech.NewEspeak(v.GetString("speech.espeak_bin"))

		ctx, cancel := context.WithTimeout(cmd.Context(), voicesTimeout)
		defer cancel()

		voices, err := synth.Voices(ctx)
		if err != nil {
			return err
		}
		if len(voices) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No voices installed.")
			return nil
		}

		male, _ := speech.SelectVoice(voices, speech.VoiceMale)
		female, _ := speech.SelectVoice(voices, speech.VoiceFemale)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLANGUAGE\tGENDER\tROLE")
		for _, voice := range voices {
			role := ""
			switch voice {
			case male:
				role = speech.VoiceMale
			case female:
				role = speech.VoiceFemale
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", voice.Name, voice.Language, voice.Gender, role)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(voicesCmd)
}
