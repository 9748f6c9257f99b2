package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pandora-cli/internal/model"
)

// pick returns the first non-empty value found at any of the dotted paths
// ("token", "data.token", ...).
func pick(v any, paths ...string) any {
	for _, p := range paths {
		cur := v
		found := true
		for _, seg := range strings.Split(p, ".") {
			m, ok := cur.(map[string]any)
			if !ok {
				found = false
				break
			}
			if cur, ok = m[seg]; !ok {
				found = false
				break
			}
		}
		if found && !empty(cur) {
			return cur
		}
	}
	return nil
}

func pickString(v any, paths ...string) string {
	switch x := pick(v, paths...).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func pickID(v any, paths ...string) model.ID {
	return model.IDFrom(pick(v, paths...))
}

func pickMap(v any, paths ...string) map[string]any {
	m, _ := pick(v, paths...).(map[string]any)
	return m
}

func pickList(v any, paths ...string) []any {
	l, _ := pick(v, paths...).([]any)
	return l
}

func pickInt(v any, paths ...string) int {
	return asInt(pick(v, paths...))
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

func asInt(v any) int {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}
		if f, err := x.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(x)
	case int:
		return x
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n
		}
	}
	return 0
}

func empty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// convert re-encodes a decoded JSON value into out, running the model's normalizing decoders.
func convert(v any, out any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// decodeList converts a list value into []T, skipping entries that do not decode.
func decodeList[T any](v []any) []T {
	out := make([]T, 0, len(v))
	for _, item := range v {
		var t T
		if err := convert(item, &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}
