package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devmap/devmap/pkg/pipeline"
)

// zoomCommand creates the zoom command for computing region transforms.
func (c *CLI) zoomCommand() *cobra.Command {
	var output string
	opts := pipeline.ZoomOptions{}

	cmd := &cobra.Command{
		Use:   "zoom <region>",
		Short: "Compute the transform that zooms the world map into a region",
		Long: `Compute the translate and scale that fit a country into the world map.

Countries listed under map.full_size in the config fill the whole map; all
others are fitted with a margin.`,
		Example: `  devmap zoom France
  devmap zoom "United States" --width 1200`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Region = strings.Join(args, " ")
			return c.runZoom(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().Float64VarP(&opts.Width, "width", "w", 0, "map width (default: viewport.width)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the transform as a JSON snapshot")

	return cmd
}

func (c *CLI) runZoom(ctx context.Context, opts pipeline.ZoomOptions, output string) error {
	ws, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if opts.Width == 0 {
		opts.Width = ws.cfg.Viewport.Width
	}
	opts.FullSize = ws.cfg.Map.FullSize

	z, err := ws.runner.Zoom(ctx, ws.ds, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, styleTitle.Render("Zoom to "+z.Region))
	printKeyValue(c.out, "Viewport", fmt.Sprintf("%s × %s", fmtFloat(z.Width), fmtFloat(z.Height)))
	printKeyValue(c.out, "Scale", fmtFloat(z.Scale))
	printKeyValue(c.out, "Translate", fmt.Sprintf("%s, %s", fmtFloat(z.TranslateX), fmtFloat(z.TranslateY)))
	printKeyValue(c.out, "SVG", fmt.Sprintf("translate(%s,%s)scale(%s)", fmtFloat(z.TranslateX), fmtFloat(z.TranslateY), fmtFloat(z.Scale)))

	if output != "" {
		if err := writeSnapshot(z, output); err != nil {
			return err
		}
		printFile(c.out, output)
	}
	return nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
