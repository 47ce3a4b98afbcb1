package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leavenlabs/leaven/internal/client"
	"github.com/leavenlabs/leaven/internal/engine"
)

var (
	contextLimit     int
	contextMinWeight float64
	contextHalfLife  float64
	rememberSession  string
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show stored memories ranked by decay weight",
	RunE:  runContext,
}

var rememberCmd = &cobra.Command{
	Use:   "remember <content>",
	Short: "Store a memory entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemember,
}

func init() {
	contextCmd.Flags().IntVar(&contextLimit, "limit", 0, "cap the number of entries")
	contextCmd.Flags().Float64Var(&contextMinWeight, "min-weight", 0, "drop entries below this weight")
	contextCmd.Flags().Float64Var(&contextHalfLife, "half-life", 0, "override the decay half-life in days")
	rememberCmd.Flags().StringVar(&rememberSession, "session", "", "source session id")
}

func runContext(cmd *cobra.Command, args []string) error {
	c := client.New()

	path := fmt.Sprintf("/api/context?limit=%d&min_weight=%g&half_life_days=%g",
		contextLimit, contextMinWeight, contextHalfLife)

	data, err := c.Get(path)
	if err != nil {
		return err
	}

	var res struct {
		Count    int                   `json:"count"`
		Memories []engine.RankedMemory `json:"memories"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if res.Count == 0 {
		fmt.Println("no memories")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WEIGHT\tCREATED\tCONTENT")
	for _, m := range res.Memories {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\n", m.Weight, m.Entry.CreatedAt, m.Entry.Content)
	}
	return tw.Flush()
}

func runRemember(cmd *cobra.Command, args []string) error {
	c := client.New()

	body, _ := json.Marshal(map[string]string{
		"content":    args[0],
		"session_id": rememberSession,
	})
	if _, err := c.Post("/api/memories", body); err != nil {
		return err
	}
	fmt.Println("remembered")
	return nil
}
