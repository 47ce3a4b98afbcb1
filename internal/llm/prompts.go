package llm

import "fmt"

// TurnPrompt wraps a conversational prompt with the proposal block contract:
// when the model wants to change its own behavior, it appends a fenced JSON
// block with a top-level "proposal" key that the extractor can lift out of
// the prose.
func TurnPrompt(userPrompt string) string {
	return fmt.Sprintf("You are a conversational agent that may propose changes to its own behavior.\n\n"+
		"Respond to the user normally. If — and only if — this turn reveals something that should change "+
		"how you behave in future turns, append a proposal after your response as a fenced JSON block:\n\n"+
		"```json\n"+
		"{\"proposal\": {\"type\": \"<category>\", \"reason\": \"<why this change>\", \"action\": {<the change>}}}\n"+
		"```\n\n"+
		"Rules:\n"+
		"- type is a short category slug, e.g. tension_adjustment or semantic_refinement\n"+
		"- reason must be a non-empty justification\n"+
		"- action is a JSON object describing the change\n"+
		"- at most one proposal per turn; omit the block entirely when nothing should change\n\n"+
		"USER:\n%s", userPrompt)
}
