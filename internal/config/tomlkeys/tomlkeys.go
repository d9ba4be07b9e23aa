// Package tomlkeys flattens nested settings documents into dotted,
// normalized keys ("window.max-fps") so TOML tables, dotted TOML keys and
// YAML mappings all address values the same way.
package tomlkeys

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Store struct {
	flat map[string]any
}

func (s Store) Flat() map[string]any {
	flat := make(map[string]any, len(s.flat))
	for key, value := range s.flat {
		flat[key] = value
	}
	return flat
}

func Decode(data []byte) (Store, error) {
	raw := map[string]any{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return Store{}, err
	}
	return FromRaw(raw), nil
}

func DecodeYAML(data []byte) (Store, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Store{}, err
	}
	return FromRaw(raw), nil
}

// FromRaw flattens raw. When two spellings normalize to the same key the
// lexically first one wins.
func FromRaw(raw map[string]any) Store {
	flat := make(map[string]any)
	flattenMap("", raw, flat)

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	normalized := make(map[string]any, len(flat))
	for _, key := range keys {
		normalizedKey := NormalizeKey(key)
		if _, exists := normalized[normalizedKey]; exists {
			continue
		}
		normalized[normalizedKey] = flat[key]
	}
	return Store{flat: normalized}
}

func (s Store) GetBool(key string) (bool, bool) {
	value, ok := s.flat[NormalizeKey(key)]
	if !ok {
		return false, false
	}
	typed, ok := value.(bool)
	return typed, ok
}

func (s Store) GetInt(key string) (int64, bool) {
	value, ok := s.flat[NormalizeKey(key)]
	if !ok {
		return 0, false
	}
	return AsInt(value)
}

func (s Store) GetString(key string) (string, bool) {
	value, ok := s.flat[NormalizeKey(key)]
	if !ok {
		return "", false
	}
	typed, ok := value.(string)
	return typed, ok
}

// GetFloats reads an array of numbers; integers are accepted.
func (s Store) GetFloats(key string) ([]float64, bool) {
	value, ok := s.flat[NormalizeKey(key)]
	if !ok {
		return nil, false
	}
	floats, err := AsFloats(value)
	return floats, err == nil
}

func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	parts := strings.Split(key, ".")
	for i, part := range parts {
		lowered := strings.ToLower(part)
		parts[i] = strings.ReplaceAll(lowered, "_", "-")
	}
	return strings.Join(parts, ".")
}

// AsInt converts the integer types produced by the TOML and YAML decoders,
// and floats without a fractional part.
func AsInt(value any) (int64, bool) {
	switch typed := value.(type) {
	case int64:
		return typed, true
	case int:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case uint64:
		return int64(typed), true
	case uint:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case float64:
		if typed == float64(int64(typed)) {
			return int64(typed), true
		}
	}
	return 0, false
}

func AsFloats(value any) ([]float64, error) {
	switch typed := value.(type) {
	case []float64:
		return append([]float64(nil), typed...), nil
	case []any:
		out := make([]float64, 0, len(typed))
		for index, item := range typed {
			switch number := item.(type) {
			case float64:
				out = append(out, number)
			case float32:
				out = append(out, float64(number))
			default:
				integer, ok := AsInt(item)
				if !ok {
					return nil, fmt.Errorf("item %d is %T, not a number", index, item)
				}
				out = append(out, float64(integer))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected an array of numbers, got %T", value)
	}
}

func flattenMap(prefix string, raw map[string]any, out map[string]any) {
	for key, value := range raw {
		flattenValue(joinKey(prefix, key), value, out)
	}
}

func flattenValue(key string, value any, out map[string]any) {
	switch typed := value.(type) {
	case map[string]any:
		flattenMap(key, typed, out)
	default:
		out[key] = value
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
