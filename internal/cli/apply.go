package cli

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-effects-mcp/internal/document"
	"github.com/ironsheep/image-effects-mcp/internal/effects"
	"github.com/ironsheep/image-effects-mcp/internal/history"
	"github.com/ironsheep/image-effects-mcp/internal/imaging"
	"github.com/ironsheep/image-effects-mcp/internal/logging"
	"github.com/ironsheep/image-effects-mcp/internal/render"
)

type applyOptions struct {
	effect string
	params []string
	rois   []string
}

func newApplyCmd(g *globals) *cobra.Command {
	opts := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply <input> <output>",
		Short: "Apply one effect to an image file and save the result",
		Example: `  image-effects-mcp apply -e sepia photo.jpg sepia.png
  image-effects-mcp apply -e pixelate -p cell_size=8 --roi 0,0,64,64 in.png out.png
  image-effects-mcp apply -e brightness-contrast -p brightness=20 -p contrast=-10 in.png out.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, g, opts, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.effect, "effect", "e", "", "effect ID (see the effects command)")
	flags.StringArrayVarP(&opts.params, "param", "p", nil, "effect parameter as key=value, repeatable")
	flags.StringArrayVar(&opts.rois, "roi", nil, "region x1,y1,x2,y2 (x2/y2 exclusive), repeatable")
	_ = cmd.MarkFlagRequired("effect")
	return cmd
}

func runApply(cmd *cobra.Command, g *globals, opts *applyOptions, in, out string) error {
	log := logging.Logger()

	e, err := effects.NewRegistry().New(opts.effect)
	if err != nil {
		return err
	}
	params, err := parseParams(opts.params)
	if err != nil {
		return err
	}
	if err := effects.Configure(e, params); err != nil {
		return err
	}

	rois := make([]image.Rectangle, 0, len(opts.rois))
	for _, s := range opts.rois {
		r, err := parseROI(s)
		if err != nil {
			return err
		}
		rois = append(rois, r)
	}

	cache := imaging.NewImageCache()
	buf, err := cache.LoadBuffer(in)
	if err != nil {
		return err
	}
	doc := document.FromBuffer(buf)

	inv := render.NewInvalidator(func(r image.Rectangle) {
		log.Debug("region rendered", "region", r.String())
	})
	coord := render.NewCoordinator(
		history.Record{Icon: "Menu.File.Open.png", Label: "Open Image"},
		render.WithWorkers(g.cfg.Workers),
		render.WithHistoryLimit(g.cfg.HistoryLimit),
		render.WithInvalidator(inv),
	)

	res, err := coord.ApplyEffect(cmd.Context(), e, doc, rois)
	if err != nil {
		return err
	}
	inv.Flush()

	if err := cache.Save(doc.Flatten(), out); err != nil {
		return err
	}

	status := "applied"
	switch {
	case res.Skipped:
		status = "skipped"
	case res.Degenerate:
		status = "unchanged"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s -> %s (%dx%d, %s)\n",
		e.Name(), status, in, out, doc.Width(), doc.Height(), res.Duration)
	log.Info("effect applied",
		"effect", res.Effect,
		"applied", res.Applied,
		"invalidated", res.Invalidated.String(),
		"duration", res.Duration,
	)
	return nil
}

// parseParams turns key=value pairs into the JSON-shaped map the effect
// configurator expects. Values are typed as int, float, bool, or string in
// that order of preference.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, val, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("parameter %q: want key=value", p)
		}
		val = strings.TrimSpace(val)
		if i, err := strconv.Atoi(val); err == nil {
			params[key] = i
		} else if f, err := strconv.ParseFloat(val, 64); err == nil {
			params[key] = f
		} else if b, err := strconv.ParseBool(val); err == nil {
			params[key] = b
		} else {
			params[key] = val
		}
	}
	return params, nil
}

// parseROI parses "x1,y1,x2,y2" into a rectangle. Swapped corners are
// normalized; clipping to the canvas happens at render time.
func parseROI(s string) (image.Rectangle, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}
