package common

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/itchyny/gojq"
)

// ApplyFilter runs a jq expression over the JSON form of value and collects
// every emitted result.
func ApplyFilter(ctx context.Context, expression string, value any) ([]any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, ValidationError("invalid --filter expression", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, ValidationError("invalid --filter expression", err)
	}

	input, err := toJSONValue(value)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	results := []any{}
	iter := code.RunWithContext(ctx, input)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := result.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, ValidationError("--filter evaluation failed", err)
		}
		results = append(results, result)
	}
	return results, nil
}

func toJSONValue(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, ValidationError("output value is not representable as json", err)
	}

	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, ValidationError("output value is not representable as json", err)
	}
	return decoded, nil
}
