package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cratergraph/cratergraph/src/badge"
	"github.com/cratergraph/cratergraph/src/resolver"
)

var (
	badgeMetric   string
	badgeFontFile string
	badgeFontName string
	badgeFontsDir string
	badgeOut      string
)

var badgeCmd = &cobra.Command{
	Use:   "badge <crate>",
	Short: "Render an SVG badge for a crate",
	Long: `Ingests the configured data directory and renders a shields.io-style
SVG badge for one crate. Metrics:

  downloads  the crate's download count
  deps       the number of direct dependencies
  depth      the maximum distance in the crate's resolved dependency graph

Without a font the badge text is measured approximately and rendered in
the viewer's own font stack; pass --font-file (or --font with
--fonts-dir) to embed a measured face.`,
	Args: cobra.ExactArgs(1),
	RunE: runBadge,
}

func init() {
	badgeCmd.Flags().StringVar(&badgeMetric, "metric", "downloads", "badge metric: downloads, deps, or depth")
	badgeCmd.Flags().StringVar(&badgeFontFile, "font-file", "", "path to a TTF/OTF file to embed")
	badgeCmd.Flags().StringVar(&badgeFontName, "font", "", "named font to embed (requires --fonts-dir)")
	badgeCmd.Flags().StringVar(&badgeFontsDir, "fonts-dir", "fonts", "directory holding named fonts")
	badgeCmd.Flags().StringVarP(&badgeOut, "output", "o", "", "write the SVG to a file instead of stdout")
	rootCmd.AddCommand(badgeCmd)
}

func runBadge(cmd *cobra.Command, args []string) error {
	name := args[0]

	g, err := loadGraph(cmd.Context())
	if err != nil {
		return err
	}
	c, ok := g.Crate(name)
	if !ok {
		return fmt.Errorf("crate %s not found", name)
	}

	var b badge.Badge
	switch badgeMetric {
	case "downloads":
		b = badge.CountBadge("downloads", c.Downloads)
	case "deps":
		b = badge.CountBadge("deps", int64(len(c.Dependencies)))
	case "depth":
		res, err := resolver.Resolve(g, name, nil, "", "")
		if err != nil {
			return fmt.Errorf("resolving %s: %w", name, err)
		}
		max := 0
		for _, rc := range res.Crates {
			if rc.Distance > max {
				max = rc.Distance
			}
		}
		b = badge.CountBadge("dep depth", int64(max))
	default:
		return fmt.Errorf("unknown metric %q (want downloads, deps, or depth)", badgeMetric)
	}

	metrics, err := badgeMetrics()
	if err != nil {
		return err
	}

	svg := badge.New(metrics).Generate(b)

	if badgeOut == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(badgeOut, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("writing badge: %w", err)
	}
	return nil
}

const badgeFontSize = 11

func badgeMetrics() (*badge.FontMetrics, error) {
	switch {
	case badgeFontFile != "":
		return badge.LoadFontFile(badgeFontFile, badgeFontSize)
	case badgeFontName != "":
		return badge.LoadNamedFont(badgeFontsDir, badgeFontName, badgeFontSize)
	default:
		return badge.Approx(badgeFontSize), nil
	}
}
