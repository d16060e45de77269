package tutor

import "github.com/abhisek/studypulse/internal/llm"

// AnswerSchema is the structured reply the tutor asks every provider for.
var AnswerSchema = &llm.Schema{
	Name:        "tutor-answer",
	Description: "A tutor's answer to a student's question, with optional follow-up questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "A clear explanation pitched at a high-school student",
			},
			"followUps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"maxItems":    3,
				"description": "Up to three short questions the student could ask next",
			},
		},
		"required":             []any{"answer", "followUps"},
		"additionalProperties": false,
	},
}
