package gateway

import "fmt"

// FallbackAnswer builds the deterministic answer served when no provider
// is reachable. It needs no network call and always succeeds, so the ask
// endpoint can guarantee a non-empty answer.
func FallbackAnswer(question string) string {
	return fmt.Sprintf(
		"Here’s a concise overview to get you unstuck while the AI service is unavailable.\n\n"+
			"What is “%s”?\n"+
			"- Definition: A clear, one-sentence description.\n"+
			"- Why it matters: The problem it solves or the benefit.\n"+
			"- Core ideas: 2–3 key principles or components.\n"+
			"- Quick example: A tiny example to make it concrete.\n"+
			"- Next steps: What to read or try next.\n\n"+
			"Tip: Re-try in a minute for a richer AI-generated answer.",
		question,
	)
}

// FallbackTranscript builds the deterministic lesson outline served when
// no provider is reachable.
func FallbackTranscript(title string) string {
	return fmt.Sprintf(
		"%s\n\n"+
			"1) Overview\n   - What it is and why it matters.\n"+
			"2) Key Concepts\n   - Concept A\n   - Concept B\n   - Concept C\n"+
			"3) Simple Example\n   - A tiny, concrete example to illustrate the idea.\n"+
			"4) Summary & Next Steps\n   - Recap the essentials and suggest what to try next.",
		title,
	)
}
