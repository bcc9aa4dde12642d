package mcp

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/local-mcps/devtools-mcp/internal/common"
)

// The Get*Param helpers read arguments that already passed validateArgs.
// They still type-check so handlers stay safe when called directly.

func GetStringParam(params map[string]interface{}, key string, required bool, defaultValue string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: missing required parameter: %s", common.ErrInvalidArgument, key)
		}
		return defaultValue, nil
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter %s must be a string", common.ErrInvalidArgument, key)
	}
	return s, nil
}

func GetIntParam(params map[string]interface{}, key string, required bool, defaultValue int) (int, error) {
	v, ok := params[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("%w: missing required parameter: %s", common.ErrInvalidArgument, key)
		}
		return defaultValue, nil
	}

	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: parameter %s must be an integer", common.ErrInvalidArgument, key)
	}
	// Whole numbers beyond the int range saturate so callers can clamp them.
	switch {
	case f >= math.MaxInt:
		return math.MaxInt, nil
	case f <= math.MinInt:
		return math.MinInt, nil
	}
	return int(f), nil
}

func GetNumberParam(params map[string]interface{}, key string, required bool, defaultValue float64) (float64, error) {
	v, ok := params[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("%w: missing required parameter: %s", common.ErrInvalidArgument, key)
		}
		return defaultValue, nil
	}

	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: parameter %s must be a number", common.ErrInvalidArgument, key)
	}
	return f, nil
}

func GetBoolParam(params map[string]interface{}, key string, defaultValue bool) (bool, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return defaultValue, nil
	}

	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: parameter %s must be a boolean", common.ErrInvalidArgument, key)
	}
	return b, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
