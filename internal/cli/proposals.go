package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leavenlabs/leaven/internal/client"
	"github.com/leavenlabs/leaven/internal/store"
)

var proposalsStatus string

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "Review queued change proposals",
	RunE:  runProposalsList,
}

var proposalsApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  reviewProposal(store.StatusApproved),
}

var proposalsRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  reviewProposal(store.StatusRejected),
}

func init() {
	proposalsCmd.Flags().StringVar(&proposalsStatus, "status", "", "filter by status (pending, approved, rejected)")
	proposalsCmd.AddCommand(proposalsApproveCmd)
	proposalsCmd.AddCommand(proposalsRejectCmd)
}

func runProposalsList(cmd *cobra.Command, args []string) error {
	c := client.New()

	path := "/api/proposals"
	if proposalsStatus != "" {
		path += "?status=" + proposalsStatus
	}

	data, err := c.Get(path)
	if err != nil {
		return err
	}

	var res struct {
		Count     int              `json:"count"`
		Proposals []store.Proposal `json:"proposals"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if res.Count == 0 {
		fmt.Println("no proposals")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTYPE\tCREATED\tREASON")
	for _, p := range res.Proposals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Status, p.Type, p.Timestamp, p.Reason)
	}
	return tw.Flush()
}

func reviewProposal(status string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c := client.New()
		if _, err := c.Post("/api/proposals/"+args[0]+"/"+reviewVerb(status), nil); err != nil {
			return err
		}
		fmt.Printf("%s %s\n", args[0], status)
		return nil
	}
}

func reviewVerb(status string) string {
	if status == store.StatusApproved {
		return "approve"
	}
	return "reject"
}
