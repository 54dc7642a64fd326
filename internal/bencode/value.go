package bencode

import "bytes"

// Value is a decoded bencode value. It is closed over exactly four types:
// Integer, ByteString, List and Dictionary.
type Value interface {
	bencode_value()
}

// Integer is a bencoded integer, e.g. i-42e
type Integer int64

// ByteString is a length prefixed run of raw bytes, e.g. 4:spam. It is not required to be text.
type ByteString []byte

// List is an ordered sequence of values, e.g. l4:spami1ee
type List []Value

// Dictionary maps byte string keys to values. Go strings hold arbitrary bytes, so a key is the
// raw key bytes. Iteration order is irrelevant: encoding always sorts keys.
type Dictionary map[string]Value

func (Integer) bencode_value()    {}
func (ByteString) bencode_value() {}
func (List) bencode_value()       {}
func (Dictionary) bencode_value() {}

type Kind int

const (
	KindInvalid Kind = iota
	KindInteger
	KindByteString
	KindList
	KindDictionary
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindByteString:
		return "byte string"
	case KindList:
		return "list"
	case KindDictionary:
		return "dictionary"
	}
	return "invalid"
}

// KindOf reports which variant v holds. A nil Value is KindInvalid.
func KindOf(v Value) Kind {
	switch v.(type) {
	case Integer:
		return KindInteger
	case ByteString:
		return KindByteString
	case List:
		return KindList
	case Dictionary:
		return KindDictionary
	}
	return KindInvalid
}

// String is a convenience constructor for a ByteString holding s.
func String(s string) ByteString {
	return ByteString(s)
}

// Strings builds a List of ByteStrings.
func Strings(values ...string) List {
	l := make(List, len(values))
	for i, s := range values {
		l[i] = ByteString(s)
	}
	return l
}

// Equal reports whether a and b hold the same logical value. Nil and empty
// byte strings, lists and dictionaries are equal.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Integer:
		b, ok := b.(Integer)
		return ok && a == b
	case ByteString:
		b, ok := b.(ByteString)
		return ok && bytes.Equal(a, b)
	case List:
		b, ok := b.(List)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case Dictionary:
		b, ok := b.(Dictionary)
		if !ok || len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, exists := b[k]
			if !exists || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}
