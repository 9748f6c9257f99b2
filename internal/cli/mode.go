package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pandora-cli/internal/model"
	"pandora-cli/internal/store"
)

func newModeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Show or persist which features use the backend and which use the local mock",
	}
	cmd.AddCommand(newModeShowCmd(app))
	cmd.AddCommand(newModeSetCmd(app))
	return cmd
}

type featureMode struct {
	Feature    string `json:"feature"`
	Mode       string `json:"mode"`
	Overridden bool   `json:"overridden"`
}

func newModeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective mode of every feature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.flags()
			if err != nil {
				return writeErr(cmd, err)
			}
			rows := make([]featureMode, 0, len(model.Features()))
			for _, name := range model.Features() {
				rows = append(rows, featureMode{
					Feature:    name,
					Mode:       store.ModeName(f.FeatureMode(name)),
					Overridden: f.Overridden(name),
				})
			}
			path, _ := store.ConfigPath()
			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"meta": map[string]any{"global": store.ModeName(f.Mode()), "config": path},
			})
		},
	}
}

func newModeSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set [feature] <api|mock|default>",
		Short: "Persist the global mode, or one feature's override (default removes it)",
		Example: strings.TrimSpace(`
  pandora mode set mock
  pandora mode set journal api
  pandora mode set journal default
`),
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeModeSet,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.ReadConfigFile()
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(args) == 1 {
				useAPI, err := store.ParseMode(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				cfg.Mode = store.ModeName(useAPI)
			} else {
				name := strings.TrimSpace(args[0])
				if !model.IsFeature(name) {
					return writeErr(cmd, fmt.Errorf("unknown feature %q (known: %s)", name, strings.Join(model.Features(), ", ")))
				}
				if strings.EqualFold(strings.TrimSpace(args[1]), "default") {
					delete(cfg.Features, name)
				} else {
					useAPI, err := store.ParseMode(args[1])
					if err != nil {
						return writeErr(cmd, err)
					}
					if cfg.Features == nil {
						cfg.Features = map[string]string{}
					}
					cfg.Features[name] = store.ModeName(useAPI)
				}
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			app.cfg = nil
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"mode": store.ModeName(cfg.UseAPI()), "features": cfg.Features},
				"_hints": []string{"pandora mode show"},
			})
		},
	}
}
