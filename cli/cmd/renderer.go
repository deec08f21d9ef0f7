package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/cli/config"
	"github.com/justapithecus/seam/cli/render"
)

// readOnlyRenderer builds the renderer for read-only commands, honoring
// render defaults from seam.yaml when --config is given.
func readOnlyRenderer(c *cli.Context) (*render.Renderer, error) {
	cfg, err := loadSeamConfig(c)
	if err != nil {
		return nil, err
	}
	defaultFormat := configVal(cfg, func(cc *config.Config) string { return cc.Render.Format })
	defaultNoColor := cfg != nil && cfg.Render.NoColor
	return render.NewRendererWithDefaults(c, defaultFormat, defaultNoColor)
}
