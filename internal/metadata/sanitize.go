package metadata

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/starford/folio/internal/markup"
)

// maxDepth bounds how far free-form objects and arrays are walked.
const maxDepth = 8

// Normalize filters value to the kind's allow-list, entity-decodes string
// members and prunes empty ones. The input map is not modified.
func Normalize(kind Kind, value map[string]any) map[string]any {
	fields, ok := allowList[kind]
	if !ok {
		return nil
	}
	return normalizeObject(value, fields, 0)
}

func normalizeObject(value map[string]any, fields []field, depth int) map[string]any {
	out := make(map[string]any, len(value))
	if fields == nil {
		if depth >= maxDepth {
			for k, v := range value {
				out[k] = v
			}
			return out
		}
		for k, v := range value {
			if nv, keep := normalizeFree(v, depth+1); keep {
				out[k] = nv
			}
		}
		return out
	}
	for _, f := range fields {
		v, ok := value[f.name]
		if !ok {
			continue
		}
		if nv, keep := normalizeField(f, v, depth+1); keep {
			out[f.name] = nv
		}
	}
	return out
}

// normalizeField returns the cleaned value and whether it survives pruning.
// Values of the wrong type are dropped.
func normalizeField(f field, v any, depth int) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch f.typ {
	case typeString:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		return pruneString(markup.DecodeEntities(s))
	case typeScalar:
		switch t := v.(type) {
		case string:
			return pruneString(markup.DecodeEntities(t))
		case json.Number, float64:
			return t, true
		}
		return nil, false
	case typeInteger:
		return normalizeInteger(v)
	case typeObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		out := normalizeObject(m, f.fields, depth)
		return out, len(out) > 0
	case typeArray:
		items, ok := v.([]any)
		if !ok || len(items) == 0 {
			return nil, false
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			if f.items == nil {
				out = append(out, item)
				continue
			}
			nv, keep := normalizeItem(*f.items, item, depth)
			if !keep {
				continue
			}
			out = append(out, nv)
		}
		return out, len(out) > 0
	default:
		return v, !isEmpty(v)
	}
}

// normalizeItem cleans an array element. Object elements are never dropped
// for being empty; only nulls and wrongly typed elements are.
func normalizeItem(f field, v any, depth int) (any, bool) {
	if f.typ == typeObject {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		return normalizeObject(m, f.fields, depth), true
	}
	return normalizeField(f, v, depth)
}

func normalizeFree(v any, depth int) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		return pruneString(markup.DecodeEntities(t))
	case map[string]any:
		out := normalizeObject(t, nil, depth)
		return out, len(out) > 0
	case []any:
		if len(t) == 0 {
			return nil, false
		}
		if depth >= maxDepth {
			return t, true
		}
		out := make([]any, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, markup.DecodeEntities(s))
				continue
			}
			if m, ok := item.(map[string]any); ok {
				out = append(out, normalizeObject(m, nil, depth+1))
				continue
			}
			out = append(out, item)
		}
		return out, true
	default:
		return v, true
	}
}

func normalizeInteger(v any) (any, bool) {
	switch t := v.(type) {
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return t, true
		}
		f, err := t.Float64()
		if err != nil {
			return nil, false
		}
		return json.Number(strconv.FormatInt(int64(f), 10)), true
	case float64:
		return json.Number(strconv.FormatInt(int64(t), 10)), true
	}
	return nil, false
}

func pruneString(s string) (any, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	return s, true
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
