package insights

import (
	"fmt"
	"strings"

	"github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/catalog"
)

const systemPrompt = `You are a warm, practical guide helping a caregiver understand the results of a behavioral observation questionnaire. You are not a clinician and must never suggest a diagnosis. Speak plainly and encouragingly.`

// buildUserMessage describes the report. It carries no identifying
// information about the child.
func buildUserMessage(r *assessment.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Questions answered: %d\n", r.Result.TotalQuestions)
	fmt.Fprintf(&b, "Total score: %d of %d\n", r.Result.TotalScore, r.MaxScore())
	fmt.Fprintf(&b, "Support level: %s (%s, %d%%)\n",
		r.Level.DisplayName(), r.Level.Description(), r.RoundedPercentage())

	b.WriteString("\nCategories (higher trend percentage means fewer observed difficulties):\n")
	for _, c := range catalog.AllCategories() {
		t, ok := r.Trend(c)
		if !ok {
			fmt.Fprintf(&b, "- %s: not assessed\n", c.DisplayName())
			continue
		}
		status := "needs support"
		if t.IsImproving {
			status = "improving"
		}
		fmt.Fprintf(&b, "- %s: %d%% (%s)\n", c.DisplayName(), t.Percentage, status)
	}

	b.WriteString(`
Instructions:
1. Summarize the result in 2-3 sentences without medical or diagnostic language.
2. List the categories marked improving as strengths.
3. List the categories that need support as focus areas.
4. Suggest 3-5 short, concrete activities a caregiver can do at home, aimed at the focus areas.`)

	return b.String()
}
