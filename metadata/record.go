package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var ErrReservedKey = errors.New("reserved metadata key")

var reservedKeys = map[string]struct{}{
	"keys": {},
}

// Record is an open-ended nested key/value store. Looking up a missing child
// creates it, and storing a falsy value (empty string, empty slice or map, zero,
// false, nil) stores NA instead. Callers test for NA, not for emptiness.
type Record struct {
	data  map[string]any
	order []string
}

func NewRecord() *Record {
	return &Record{data: make(map[string]any)}
}

// Child returns the nested record stored under key, creating it when missing.
func (r *Record) Child(key string) (*Record, error) {
	if _, ok := reservedKeys[key]; ok {
		return nil, fmt.Errorf("%w: %q", ErrReservedKey, key)
	}
	if v, ok := r.data[key]; ok {
		if child, ok := v.(*Record); ok {
			return child, nil
		}
		return nil, fmt.Errorf("metadata key %q holds a %T, not a record", key, v)
	}
	child := NewRecord()
	r.put(key, child)
	return child, nil
}

func (r *Record) Set(key string, value any) {
	if isFalsy(value) {
		value = NA
	}
	r.put(key, value)
}

// Append extends the string list under key, creating it when missing.
func (r *Record) Append(key string, values ...string) {
	if existing, ok := r.data[key].([]string); ok {
		r.data[key] = append(existing, values...)
		return
	}
	r.Set(key, append([]string(nil), values...))
}

func (r *Record) Get(key string) (any, bool) {
	v, ok := r.data[key]
	return v, ok
}

// String renders the scalar under key, NA when it was never set.
func (r *Record) String(key string) string {
	v, ok := r.data[key]
	if !ok {
		return NA
	}
	return fmt.Sprint(v)
}

// Strings returns the string list under key, nil when there is none.
func (r *Record) Strings(key string) []string {
	list, _ := r.data[key].([]string)
	return append([]string(nil), list...)
}

// Keys in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.order...)
}

// Map converts the record into plain nested maps. Scalars are rendered as strings,
// lists and nested records keep their shape.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.data))
	for _, k := range r.order {
		switch v := r.data[k].(type) {
		case *Record:
			out[k] = v.Map()
		case []string:
			out[k] = append([]string(nil), v...)
		default:
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
				out[k] = v
			} else {
				out[k] = fmt.Sprint(v)
			}
		}
	}
	return out
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = *NewRecord()
	for k, v := range raw {
		if nested, ok := v.(map[string]any); ok {
			child, err := r.Child(k)
			if err != nil {
				return err
			}
			nb, _ := json.Marshal(nested)
			if err := child.UnmarshalJSON(nb); err != nil {
				return err
			}
			continue
		}
		if list, ok := stringList(v); ok {
			r.Set(k, list)
			continue
		}
		r.Set(k, v)
	}
	return nil
}

func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		list = append(list, s)
	}
	return list, true
}

func (r *Record) put(key string, value any) {
	if _, ok := r.data[key]; !ok {
		r.order = append(r.order, key)
	}
	r.data[key] = value
}

func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := v.(*Record); ok {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}
