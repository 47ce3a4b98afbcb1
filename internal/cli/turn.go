package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leavenlabs/leaven/internal/client"
	"github.com/leavenlabs/leaven/internal/store"
)

var turnGenerate bool

var turnCmd = &cobra.Command{
	Use:   "turn [text]",
	Short: "Process a model response (or generate one) through the proposal pipeline",
	Long: "Reads a raw model response from the argument or stdin, extracts any embedded " +
		"change proposal, queues it as pending, and prints the cleaned response text. " +
		"With --generate the text is treated as a prompt and sent to the configured backend first.",
	Args: cobra.MaximumNArgs(1),
	RunE: runTurn,
}

func init() {
	turnCmd.Flags().BoolVar(&turnGenerate, "generate", false, "treat input as a prompt and generate the response")
}

func runTurn(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no input text")
	}

	c := client.New()
	if !c.Healthy() {
		return fmt.Errorf("leaven server not reachable — is `leaven serve` running?")
	}

	path := "/api/turns"
	payload := map[string]string{"response_text": text}
	if turnGenerate {
		path = "/api/generate"
		payload = map[string]string{"prompt": text}
	}

	body, _ := json.Marshal(payload)
	data, err := c.Post(path, body)
	if err != nil {
		return err
	}

	var res struct {
		CleanText string          `json:"clean_text"`
		Saved     bool            `json:"saved"`
		Proposal  *store.Proposal `json:"proposal"`
		Error     string          `json:"error"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Println(res.CleanText)
	if res.Proposal != nil {
		fmt.Fprintf(os.Stderr, "queued proposal %s [%s]\n", res.Proposal.ID, res.Proposal.Type)
	}
	if res.Error != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", res.Error)
	}
	return nil
}
