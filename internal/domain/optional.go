package domain

import "encoding/json"

// Optional distinguishes a JSON field that was absent from one that was
// present but null. Absent fields leave the stored value untouched on
// partial updates; an explicit null clears it where the field is nullable.
type Optional[T any] struct {
	Set   bool // field appeared in the request body
	Valid bool // value is non-null
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Or returns the wrapped value when one was provided, otherwise fallback.
func (o Optional[T]) Or(fallback T) T {
	if o.Set && o.Valid {
		return o.Value
	}
	return fallback
}
