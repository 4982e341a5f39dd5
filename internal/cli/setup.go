// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/jaml-tui/internal/app"
	"github.com/jeranaias/jaml-tui/internal/model"
	"github.com/jeranaias/jaml-tui/internal/ui/components"
)

func newSetupCmd(e *env) *cobra.Command {
	var gender, avatar, theme string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Choose the assistant, avatar and theme",
		Long: `Choose between Jaml (male) and Naqa (female), pick an avatar and
optionally a theme. Without flags the choices are prompted for.`,
		Example: `  jaml setup
  jaml setup --gender female --avatar crystal
  jaml setup --theme purple`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.openSession(cmd.Context(), openOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			a := s.app

			if theme != "" {
				th, err := model.ParseTheme(theme)
				if err != nil {
					return &UsageError{Msg: err.Error()}
				}
				if err := a.SetTheme(th); err != nil {
					return err
				}
			}

			var p model.Persona
			switch {
			case gender != "" || avatar != "":
				p, err = personaFromFlags(a.Persona(), gender, avatar)
			case theme != "":
				// Theme only; onboarding state is left alone.
				p = a.Persona()
				return emitSetup(out, e.flags.json, p, a.Theme())
			case e.flags.json || !IsTTY():
				return &TTYRequiredError{Operation: "choose a persona (--gender, --avatar)"}
			default:
				p, err = choosePersona(cmd.InOrStdin(), out, a.Persona())
			}
			if err != nil {
				return err
			}
			if err := a.CompleteOnboarding(p); err != nil {
				return err
			}

			return emitSetup(out, e.flags.json, p, a.Theme())
		},
	}

	cmd.Flags().StringVar(&gender, "gender", "", "male (Jaml) or female (Naqa)")
	cmd.Flags().StringVar(&avatar, "avatar", "", "orb, bot, geometric, crystal or nebula")
	cmd.Flags().StringVar(&theme, "theme", "", "earthy or purple")
	return cmd
}

func emitSetup(out io.Writer, jsonMode bool, p model.Persona, th model.Theme) error {
	return emit(out, jsonMode, "setup", map[string]string{
		"name":   p.LatinName(),
		"gender": string(p.Gender),
		"avatar": string(p.Avatar),
		"theme":  string(th),
	}, func(w io.Writer) {
		fmt.Fprintln(w, SuccessStyle.Render(components.AvatarGlyph(p.Avatar)+" "+app.Greeting(p)))
	})
}

// personaFromFlags applies the given flags on top of current.
func personaFromFlags(current model.Persona, gender, avatar string) (model.Persona, error) {
	p := current
	if gender != "" {
		g, err := model.ParseGender(gender)
		if err != nil {
			return p, &UsageError{Msg: err.Error()}
		}
		p.Gender = g
	}
	if avatar != "" {
		av, err := model.ParseAvatar(avatar)
		if err != nil {
			return p, &UsageError{Msg: err.Error()}
		}
		p.Avatar = av
	}
	return p, nil
}

// choosePersona prompts for gender then avatar, defaulting to current.
func choosePersona(in io.Reader, out io.Writer, current model.Persona) (model.Persona, error) {
	male := model.Persona{Gender: model.GenderMale}
	female := model.Persona{Gender: model.GenderFemale}
	genders := []model.Gender{model.GenderMale, model.GenderFemale}

	def := 0
	if current.Gender == model.GenderFemale {
		def = 1
	}
	gi, err := PromptChoice(in, out, "اختر المساعد:", []string{
		male.Name() + " (" + male.LatinName() + ")",
		female.Name() + " (" + female.LatinName() + ")",
	}, def)
	if err != nil {
		return current, err
	}

	options := make([]string, len(model.Avatars))
	def = 0
	for i, a := range model.Avatars {
		options[i] = components.AvatarGlyph(a) + "  " + string(a)
		if a == current.Avatar {
			def = i
		}
	}
	idx, err := PromptChoice(in, out, "اختر الصورة الرمزية:", options, def)
	if err != nil {
		return current, err
	}

	return model.Persona{Gender: genders[gi], Avatar: model.Avatars[idx]}, nil
}

// onboard completes first-run setup before the REPL starts. Without a
// terminal the default persona is used.
func onboard(in io.Reader, out io.Writer, a *app.App, interactive bool) error {
	p := model.DefaultPersona()
	if interactive {
		fmt.Fprintln(out, TitleStyle.Render("مرحباً بك"))
		var err error
		if p, err = choosePersona(in, out, p); err != nil {
			return err
		}
	}
	return a.CompleteOnboarding(p)
}
