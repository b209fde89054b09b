package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cratergraph/cratergraph/src/resolver"
)

var (
	graphFeatures []string
	graphTarget   string
	graphCfgName  string
)

var graphCmd = &cobra.Command{
	Use:   "graph <crate>",
	Short: "Resolve a crate's dependency graph from a freshly ingested data directory",
	Long: `Ingests the configured data directory, resolves the feature- and
platform-aware dependency closure of a crate, and prints the resolved
crate list and edge list as JSON — the same operation as GET /graph/{crate}.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringSliceVar(&graphFeatures, "features", nil, "features to enable on the root crate")
	graphCmd.Flags().StringVar(&graphTarget, "target", "", "target triple (default x86_64-unknown-linux-gnu)")
	graphCmd.Flags().StringVar(&graphCfgName, "cfg-name", "", "additional bare cfg name (default unix)")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	root := args[0]

	g, err := loadGraph(cmd.Context())
	if err != nil {
		return err
	}

	target := graphTarget
	if target == "" {
		target = cfg.Server.DefaultTarget
	}
	cfgName := graphCfgName
	if cfgName == "" {
		cfgName = cfg.Server.DefaultCfgName
	}

	res, err := resolver.Resolve(g, root, graphFeatures, target, cfgName)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return fmt.Errorf("crate %s not found", root)
		}
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
