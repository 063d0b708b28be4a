package kernels

import (
	"fmt"

	"indicatorworker/pkg/log"
	"indicatorworker/pkg/workerrors"
)

// ResolveParams merges rawParams (arriving as map[string]any from
// indicator_config.parameters jsonb) over defaults, by name. Unknown keys
// log a warn and are otherwise ignored, keeping the config schema
// forward-compatible (spec.md §9).
func ResolveParams(name string, defaults, raw map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(defaults))
	for k, v := range defaults {
		resolved[k] = v
	}
	for k, v := range raw {
		if _, known := defaults[k]; !known {
			log.StageWarn("kernels", "unknown parameter ignored", log.Fields{"kernel": name, "param": k})
			continue
		}
		resolved[k] = v
	}
	return resolved, nil
}

// IntParam extracts an integer parameter, accepting float64 (the typical
// decoded-JSON shape) or int. It does not check the sign; PositiveIntParam
// adds the check that makes a period of zero or negative InvalidParameter
// per spec.md §8 boundary behaviour 11.
func IntParam(params map[string]any, key string) (int, error) {
	v, ok := params[key]
	if !ok {
		return 0, workerrors.New(workerrors.InvalidParameter, "", nil).WithMessage(fmt.Sprintf("missing parameter %q", key))
	}
	n, err := toInt(v)
	if err != nil {
		return 0, workerrors.New(workerrors.InvalidParameter, "", err).WithMessage(fmt.Sprintf("parameter %q is not numeric", key))
	}
	return n, nil
}

// PositiveIntParam is IntParam plus the period>0 boundary check.
func PositiveIntParam(params map[string]any, key string) (int, error) {
	n, err := IntParam(params, key)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, workerrors.New(workerrors.InvalidParameter, "", nil).WithMessage(fmt.Sprintf("parameter %q must be positive, got %d", key, n))
	}
	return n, nil
}

// FloatParam extracts a float64 parameter.
func FloatParam(params map[string]any, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, workerrors.New(workerrors.InvalidParameter, "", nil).WithMessage(fmt.Sprintf("missing parameter %q", key))
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, workerrors.New(workerrors.InvalidParameter, "", nil).WithMessage(fmt.Sprintf("parameter %q is not numeric", key))
	}
}

// StringParam extracts a string parameter, defaulting to "" if absent.
func StringParam(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case float32:
		return int(n), nil
	default:
		return 0, fmt.Errorf("value %v is not numeric", v)
	}
}
