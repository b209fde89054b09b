package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cratergraph/cratergraph/src/graph"
	"github.com/cratergraph/cratergraph/src/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <crates|categories|keywords> <term>",
	Short: "Prefix-search a freshly ingested data directory",
	Long: `Ingests the configured data directory and prints the ranked prefix
matches for a term, one JSON record per line — the same operation as
GET /search/{kind}/{term}, without standing up the server.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	kind, term := args[0], args[1]

	g, err := loadGraph(cmd.Context())
	if err != nil {
		return err
	}

	records, err := searchRecords(g, kind, term, cfg.Search.ResultCap)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	}
	return nil
}

// searchRecords runs the ranked prefix search for one vertex kind and
// returns the matched vertex records in order.
func searchRecords(g *graph.Graph, kind, term string, cap int) ([]any, error) {
	switch kind {
	case "crates":
		_, exact := g.Crate(term)
		names := search.Search(g.CrateNames(), term, func(n string) int {
			c, _ := g.Crate(n)
			return c.Popularity()
		}, cap, exact)
		out := make([]any, 0, len(names))
		for _, n := range names {
			c, _ := g.Crate(n)
			out = append(out, c)
		}
		return out, nil
	case "categories":
		_, exact := g.Category(term)
		names := search.Search(g.CategoryNames(), term, func(n string) int {
			c, _ := g.Category(n)
			return c.Popularity()
		}, cap, exact)
		out := make([]any, 0, len(names))
		for _, n := range names {
			c, _ := g.Category(n)
			out = append(out, c)
		}
		return out, nil
	case "keywords":
		_, exact := g.Keyword(term)
		names := search.Search(g.KeywordNames(), term, func(n string) int {
			k, _ := g.Keyword(n)
			return k.Popularity()
		}, cap, exact)
		out := make([]any, 0, len(names))
		for _, n := range names {
			k, _ := g.Keyword(n)
			out = append(out, k)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown vertex kind %q (want crates, categories, or keywords)", kind)
	}
}
