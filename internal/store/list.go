package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Keyed is implemented by every entity kept in a local list.
type Keyed interface {
	Key() string
}

// ReadJSON decodes the value stored under key into out, which must be a
// pointer. A missing key or a value that does not parse reports found=false
// and leaves out untouched.
func ReadJSON(ctx context.Context, kv KV, key string, out any) (bool, error) {
	raw, ok, err := readRaw(ctx, kv, key)
	if err != nil || !ok {
		return false, err
	}
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return false, fmt.Errorf("read %s: out must be a non-nil pointer", key)
	}
	tmp := reflect.New(dst.Elem().Type())
	if err := json.Unmarshal([]byte(raw), tmp.Interface()); err != nil {
		return false, nil
	}
	dst.Elem().Set(tmp.Elem())
	return true, nil
}

func readRaw(ctx context.Context, kv KV, key string) (string, bool, error) {
	raw, ok, err := kv.GetItem(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	if strings.TrimSpace(raw) == "" {
		return "", false, nil
	}
	return raw, true, nil
}

func WriteJSON(ctx context.Context, kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.SetItem(ctx, key, string(b))
}

// LoadList returns the list stored under key, or an empty list. Elements that
// do not decode are skipped so they are never written back as blank records.
func LoadList[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, ok, err := readRaw(ctx, kv, key)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if !ok {
		return out, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return out, nil
	}
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func SaveList[T any](ctx context.Context, kv KV, key string, list []T) error {
	if list == nil {
		list = []T{}
	}
	return WriteJSON(ctx, kv, key, list)
}

// FindByID returns the entity whose key equals id.
func FindByID[T Keyed](list []T, id string) (T, bool) {
	id = strings.TrimSpace(id)
	for _, v := range list {
		if v.Key() == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Upsert replaces the entity with the same key in place, or inserts it at the front.
func Upsert[T Keyed](list []T, v T) []T {
	for i := range list {
		if list[i].Key() == v.Key() {
			out := append([]T(nil), list...)
			out[i] = v
			return out
		}
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}

// RemoveByID drops every entity keyed id and reports whether one was removed.
func RemoveByID[T Keyed](list []T, id string) ([]T, bool) {
	id = strings.TrimSpace(id)
	out := make([]T, 0, len(list))
	removed := false
	for _, v := range list {
		if v.Key() == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}

// MergeByID overlays local onto server: entities present in both take the local
// version at the server position; local-only entities are appended in local order.
func MergeByID[T Keyed](server, local []T) []T {
	byID := make(map[string]T, len(local))
	for _, v := range local {
		byID[v.Key()] = v
	}
	out := make([]T, 0, len(server)+len(local))
	seen := make(map[string]bool, len(server))
	for _, v := range server {
		k := v.Key()
		if lv, ok := byID[k]; ok {
			v = lv
		}
		seen[k] = true
		out = append(out, v)
	}
	for _, v := range local {
		if seen[v.Key()] {
			continue
		}
		seen[v.Key()] = true
		out = append(out, v)
	}
	return out
}

// UpdateList loads the list under key, applies fn, and saves the result.
func UpdateList[T any](ctx context.Context, kv KV, key string, fn func([]T) ([]T, error)) ([]T, error) {
	list, err := LoadList[T](ctx, kv, key)
	if err != nil {
		return nil, err
	}
	next, err := fn(list)
	if err != nil {
		return nil, err
	}
	if err := SaveList(ctx, kv, key, next); err != nil {
		return nil, err
	}
	return next, nil
}
