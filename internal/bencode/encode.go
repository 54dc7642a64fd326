package bencode

import (
	"io"
	"sort"
	"strconv"
)

// Encode returns the canonical encoding of v. Dictionary keys are written in byte-lexicographic
// order, so equal values always encode to identical bytes.
func Encode(v Value) []byte {
	return AppendEncode(nil, v)
}

// EncodeTo writes the canonical encoding of v to w. The only possible error is w's.
func EncodeTo(w io.Writer, v Value) error {
	_, err := w.Write(Encode(v))
	return err
}

// AppendEncode appends the canonical encoding of v to dst and returns the extended slice.
// A nil Value is written as the empty byte string.
func AppendEncode(dst []byte, v Value) []byte {
	switch v := v.(type) {
	case Integer:
		dst = append(dst, 'i')
		dst = strconv.AppendInt(dst, int64(v), 10)
		return append(dst, 'e')
	case ByteString:
		return append_string(dst, v)
	case List:
		dst = append(dst, 'l')
		for _, item := range v {
			dst = AppendEncode(dst, item)
		}
		return append(dst, 'e')
	case Dictionary:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys) // string comparison in Go is bytewise

		dst = append(dst, 'd')
		for _, k := range keys {
			dst = append_string(dst, []byte(k))
			dst = AppendEncode(dst, v[k])
		}
		return append(dst, 'e')
	}
	return append(dst, '0', ':')
}

func append_string(dst []byte, s []byte) []byte {
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, ':')
	return append(dst, s...)
}
