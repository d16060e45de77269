package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/studypulse/internal/progress"
)

const systemPrompt = `You are a patient study tutor for students in grades 9-12. Answer the question directly, then explain the reasoning in short steps. Stay within the named subject. If the question is unclear, say what is missing.`

func buildPrompt(subject, question string, sp *progress.SubjectProgress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	if sp != nil {
		fmt.Fprintf(&b, "Syllabus progress: %d of %d topics (%d%%)\n",
			sp.CompletedTopics, sp.TotalTopics, sp.ProgressPercentage)
	}
	fmt.Fprintf(&b, "\nQuestion:\n%s\n", strings.TrimSpace(question))
	b.WriteString(`
Instructions:
1. Keep the answer under 250 words.
2. Use plain text. Write formulas inline, e.g. v = u + a*t.
3. Suggest follow-up questions only when they help the student go further.`)
	return b.String()
}
