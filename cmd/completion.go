package cmd

import (
	"github.com/etnz/mirror/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	jsonl := predict.Files("*.jsonl")
	db := predict.Files("*.sqlite")
	day := predict.Something

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.toml"),
			"output": predict.Set{"term", "markdown", "html"},
			"v":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"holding": {Flags: map[string]complete.Predictor{
				"orders":       jsonl,
				"actions":      jsonl,
				"db":           db,
				"d":            day,
				"value":        predict.Nothing,
				"json":         predict.Nothing,
				"slices":       jsonl,
				"by-portfolio": predict.Nothing,
			}},
			"performance": {Flags: map[string]complete.Predictor{
				"orders":  jsonl,
				"actions": jsonl,
				"db":      db,
				"from":    day,
				"to":      day,
				"p":       predict.Set{"daily", "weekly", "monthly"},
			}},
			"slices": {Flags: map[string]complete.Predictor{
				"slices":        jsonl,
				"fund":          jsonl,
				"portfolio":     predict.Something,
				"non-compliant": predict.Something,
				"orders":        jsonl,
				"actions":       jsonl,
				"db":            db,
				"w":             predict.Nothing,
			}},
			"preview": {Flags: map[string]complete.Predictor{
				"orders":    jsonl,
				"actions":   jsonl,
				"db":        db,
				"slices":    jsonl,
				"amount":    predict.Something,
				"liquidate": predict.Nothing,
			}},
			"rebalance": {Flags: map[string]complete.Predictor{
				"weights": predict.Something,
				"values":  predict.Something,
				"amount":  predict.Something,
				"raw":     predict.Nothing,
			}},
			"topic":    {Args: topics()},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}

// topics predicts the documentation topics.
func topics() complete.Predictor {
	names, err := docs.GetAllTopics()
	if err != nil {
		return predict.Nothing
	}
	return predict.Set(append(names, "readme", "*"))
}
