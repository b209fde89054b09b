package cmd

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cratergraph/cratergraph/src/version"
)

var refreshAddr string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask a running instance to rebuild its graph",
	Long: `Sends PUT /state/reset to a running cratergraph server. The request is
subject to the server's refresh rate limit; a 403 means the current graph
is newer than the configured interval allows.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().StringVar(&refreshAddr, "addr", "http://localhost:8080", "base URL of the running instance")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	url := strings.TrimRight(refreshAddr, "/") + "/state/reset"
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPut, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting refresh: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusOK:
		fmt.Println("refresh accepted")
		return nil
	case http.StatusForbidden:
		return fmt.Errorf("refresh rate-limited: %s", strings.TrimSpace(string(body)))
	default:
		return fmt.Errorf("refresh failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}
}
