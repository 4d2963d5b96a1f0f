package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/gamedash/internal/contracts"
	"github.com/wonny/gamedash/internal/presets"
)

// selectionFlags binds --platform/--genre/--from/--to/--preset to a command
type selectionFlags struct {
	platforms []string
	genres    []string
	from      int
	to        int
	preset    string
}

func (f *selectionFlags) bind(cmd *cobra.Command) {
	window := contracts.NormalizationWindow

	cmd.Flags().StringArrayVar(&f.platforms, "platform", nil, "platform filter, repeat for several (default all)")
	cmd.Flags().StringArrayVar(&f.genres, "genre", nil, "genre filter, repeat for several (default all)")
	cmd.Flags().IntVar(&f.from, "from", window.Min, "first release year")
	cmd.Flags().IntVar(&f.to, "to", window.Max, "last release year")
	cmd.Flags().StringVar(&f.preset, "preset", "", "use a named preset from PRESETS_PATH instead of the filter flags")
}

// selection returns the preset selection when --preset is set, else the flag selection
func (f *selectionFlags) selection(presetsPath string) (contracts.FilterSelection, error) {
	if f.preset != "" {
		set, err := presets.Load(presetsPath)
		if err != nil {
			return contracts.FilterSelection{}, fmt.Errorf("load presets: %w", err)
		}
		p, ok := set.Get(f.preset)
		if !ok {
			return contracts.FilterSelection{}, fmt.Errorf("preset %q not found in %s", f.preset, presetsPath)
		}
		return p.Selection, nil
	}

	sel := contracts.FilterSelection{
		Platforms: f.platforms,
		Genres:    f.genres,
		Years:     contracts.YearRange{Min: f.from, Max: f.to},
	}
	if err := sel.Validate(); err != nil {
		return sel, err
	}
	return sel, nil
}
