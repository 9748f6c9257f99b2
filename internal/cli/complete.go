package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"pandora-cli/internal/model"
	"pandora-cli/internal/store"
)

var modeValues = []string{store.ModeAPI, store.ModeMock}

// completeFeatureFlag completes --feature values as name=mode pairs.
func completeFeatureFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, name := range model.Features() {
		for _, m := range modeValues {
			if s := name + "=" + m; strings.HasPrefix(s, toComplete) {
				out = append(out, s)
			}
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeModeSet completes `mode set [feature] <mode>`.
func completeModeSet(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		out := append([]string{}, modeValues...)
		out = append(out, model.Features()...)
		return out, cobra.ShellCompDirectiveNoFileComp
	case 1:
		if model.IsFeature(args[0]) {
			return append(append([]string{}, modeValues...), "default"), cobra.ShellCompDirectiveNoFileComp
		}
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func completeModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return modeValues, cobra.ShellCompDirectiveNoFileComp
}
