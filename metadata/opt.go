package metadata

import (
	"encoding/json"
	"fmt"
)

// NA is what an unset value renders as in metadata output.
const NA = "NA"

// Opt holds a value that may not have been computed yet. The zero value is unset.
type Opt[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Opt[T] {
	return Opt[T]{v: v, ok: true}
}

// NonEmpty is set only for a non-empty string, so "" reads back as NA.
func NonEmpty(s string) Opt[string] {
	if s == "" {
		return Opt[string]{}
	}
	return Some(s)
}

func (o Opt[T]) Get() (T, bool) {
	return o.v, o.ok
}

func (o Opt[T]) IsSet() bool {
	return o.ok
}

func (o Opt[T]) OrElse(d T) T {
	if !o.ok {
		return d
	}
	return o.v
}

func (o Opt[T]) String() string {
	if !o.ok {
		return NA
	}
	return fmt.Sprint(o.v)
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return json.Marshal(NA)
	}
	return json.Marshal(o.v)
}

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil && s == NA {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
