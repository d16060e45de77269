package llm

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

func (c ModelCost) Cost(in, out int) float64 {
	return (float64(in)*c.InputPerMTok + float64(out)*c.OutputPerMTok) / 1_000_000
}

// LookupCost returns nil for models without a known price.
func LookupCost(model string) *ModelCost {
	c, ok := modelCosts[model]
	if !ok {
		return nil
	}
	return &c
}

// modelCosts covers the models the aliases resolve to plus the OpenRouter
// default.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5-20251001":   {1, 5},
	"claude-sonnet-4-20250514":    {3, 15},
	"gpt-4o":                      {2.5, 10},
	"gpt-4o-mini":                 {0.15, 0.6},
	"gemini-2.0-flash":            {0.1, 0.4},
	"gemini-2.0-pro":              {1.25, 10},
	"google/gemini-2.0-flash-001": {0.1, 0.4},
}
