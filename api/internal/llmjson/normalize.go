package llmjson

import (
	"sort"
	"strings"
)

// Field declares one canonical key and the spellings a model is known to use
// for it, in preference order.
type Field struct {
	Name     string
	Variants []string
}

// F is shorthand for building a Field. With no variants the canonical name is
// the only spelling tried.
func F(name string, variants ...string) Field {
	if len(variants) == 0 {
		variants = []string{name}
	}
	return Field{Name: name, Variants: variants}
}

// Value is one normalized slot. Present is false when no variant matched.
type Value struct {
	Raw     any
	Present bool
	Key     string // source key that matched
}

// Fields maps every canonical name of a field list to its value. Names that did not
// match anything are still in the map with Present == false.
type Fields map[string]Value

// Get returns the slot for name; unknown names yield an absent value.
func (f Fields) Get(name string) Value { return f[name] }

// Object normalizes the nested object stored under name with its own field list.
// A missing or non-object value yields all-absent fields.
func (f Fields) Object(name string, fields []Field) Fields {
	return Normalize(f[name].Raw, fields)
}

// Normalize maps the keys of v onto the canonical names in fields. For each
// variant, in order, it tries the exact key, the lower-cased key, the key with
// underscores removed, and finally any key equal once case and underscores
// are ignored. The first hit wins.
// Keys not named in fields are dropped. v that is not a JSON object
// produces all-absent fields.
func Normalize(v any, fields []Field) Fields {
	out := make(Fields, len(fields))
	obj, _ := v.(map[string]any)

	var keys []string
	if len(obj) > 0 {
		keys = make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		// deterministic when several keys fold to the same spelling
		sort.Strings(keys)
	}

	for _, fld := range fields {
		val := Value{}
		if obj != nil {
			if k, ok := lookup(obj, keys, fld.Variants); ok {
				val = Value{Raw: obj[k], Present: true, Key: k}
			}
		}
		out[fld.Name] = val
	}
	return out
}

func lookup(obj map[string]any, keys []string, variants []string) (string, bool) {
	for _, variant := range variants {
		for _, k := range []string{variant, strings.ToLower(variant), strings.ReplaceAll(variant, "_", "")} {
			if _, ok := obj[k]; ok {
				return k, true
			}
		}
		folded := fold(variant)
		for _, k := range keys {
			if fold(k) == folded {
				return k, true
			}
		}
	}
	return "", false
}

func fold(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "")
}
