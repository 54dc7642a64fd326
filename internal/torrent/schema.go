package torrent

import (
	"errors"
	"fmt"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
)

var (
	ErrMissingField = errors.New("missing field")
	ErrWrongType    = errors.New("wrong type")
)

// SchemaError reports a descriptor field that an accessor needed but could not use. Field is a
// path such as "info.files[2].length".
type SchemaError struct {
	Err   error
	Field string
	Want  bencode.Kind
	Got   bencode.Kind
}

func (e *SchemaError) Error() string {
	if errors.Is(e.Err, ErrWrongType) {
		return fmt.Sprintf("invalid torrent: %s is a %v, want %v", e.Field, e.Got, e.Want)
	}
	return fmt.Sprintf("invalid torrent: %v %s", e.Err, e.Field)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &SchemaError{Err: ErrMissingField, Field: field}
}

func wrong_type[T bencode.Value](field string, got bencode.Value) error {
	var want T
	return &SchemaError{Err: ErrWrongType, Field: field, Want: bencode.KindOf(want), Got: bencode.KindOf(got)}
}

// Get returns the value under key in d, which must be of type T.
func Get[T bencode.Value](d bencode.Dictionary, key string) (T, error) {
	return lookup[T](d, "", key)
}

func lookup[T bencode.Value](d bencode.Dictionary, prefix, key string) (T, error) {
	var nil_t T
	field := join_field(prefix, key)
	val, exists := d[key]
	if !exists {
		return nil_t, missing(field)
	}
	res, ok := val.(T)
	if !ok {
		return nil_t, wrong_type[T](field, val)
	}
	return res, nil
}

func lookup_strings(d bencode.Dictionary, prefix, key string) ([]string, error) {
	list, err := lookup[bencode.List](d, prefix, key)
	if err != nil {
		return nil, err
	}
	return string_list(list, join_field(prefix, key))
}

func string_list(list bencode.List, field string) ([]string, error) {
	results := make([]string, 0, len(list))
	for i, v := range list {
		s, ok := v.(bencode.ByteString)
		if !ok {
			return nil, wrong_type[bencode.ByteString](fmt.Sprintf("%s[%d]", field, i), v)
		}
		results = append(results, string(s))
	}
	return results, nil
}

func join_field(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func errors_is_missing(err error) bool {
	return errors.Is(err, ErrMissingField)
}
