package bencode

import (
	"bytes"
	"errors"
	"math"
)

// Code to decode bencoded data, e.g. a torrent file. There are only four datatypes, and it's all
// done around individual bytes (text encoding does not apply here).

// DefaultMaxDepth bounds list/dictionary nesting when a Decoder does not set MaxDepth.
const DefaultMaxDepth = 512

var ErrKeyNotFound = errors.New("key not found")

// Decoder holds decoding options. The zero value is a lenient decoder with DefaultMaxDepth.
type Decoder struct {
	// MaxDepth is the deepest permitted list/dictionary nesting. Zero or less means DefaultMaxDepth.
	MaxDepth int
	// Strict rejects input with bytes left over after the first complete value.
	Strict bool
}

// Decode parses the first value in data and returns it with the number of bytes it occupied.
// Trailing bytes are left to the caller.
func Decode(data []byte) (Value, int, error) {
	return Decoder{}.Decode(data)
}

// DecodeStrict parses data, which must hold exactly one value.
func DecodeStrict(data []byte) (Value, error) {
	v, _, err := Decoder{Strict: true}.Decode(data)
	return v, err
}

func (d Decoder) Decode(data []byte) (Value, int, error) {
	p := d.parser(data)
	v, err := p.parse_value()
	if err != nil {
		return nil, 0, err
	}
	if d.Strict && p.pos != len(data) {
		return nil, 0, decode_error(ErrTrailingData, p.pos)
	}
	return v, p.pos, nil
}

func (d Decoder) parser(data []byte) *parser {
	max_depth := d.MaxDepth
	if max_depth <= 0 {
		max_depth = DefaultMaxDepth
	}
	return &parser{data: data, max_depth: max_depth}
}

// RawField returns the undecoded bytes of the value stored under key in the dictionary at the
// start of data. The info hash of a torrent must be computed over these original bytes, not over
// a re-encoding. Duplicate keys resolve to the last occurrence, as in Decode.
func RawField(data []byte, key string) ([]byte, error) {
	p := Decoder{}.parser(data)
	if len(data) == 0 {
		return nil, decode_error(ErrTruncatedInput, 0)
	}
	if data[0] != 'd' {
		return nil, decode_error(ErrUnexpectedToken, 0)
	}

	var found []byte
	err := p.parse_dict_entries(func(k ByteString, start int) error {
		if string(k) != key {
			_, err := p.parse_value()
			return err
		}
		if _, err := p.parse_value(); err != nil {
			return err
		}
		found = data[start:p.pos:p.pos]
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrKeyNotFound
	}
	return found, nil
}

// parser is a cursor over an immutable byte slice. pos only ever moves forward.
type parser struct {
	data      []byte
	pos       int
	depth     int
	max_depth int
}

func is_digit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (p *parser) parse_value() (Value, error) {
	if p.pos >= len(p.data) {
		return nil, decode_error(ErrTruncatedInput, p.pos)
	}

	switch c := p.data[p.pos]; {
	case c == 'i':
		return p.parse_int()
	case c == 'l':
		return p.parse_list()
	case c == 'd':
		return p.parse_dict()
	case is_digit(c):
		return p.parse_string()
	}
	return nil, decode_error(ErrUnexpectedToken, p.pos)
}

// parse_int reads i<optional -><digits>e. Leading zeros are tolerated; negative zero is not.
func (p *parser) parse_int() (Value, error) {
	p.pos++ // i

	negative := false
	if p.pos < len(p.data) && p.data[p.pos] == '-' {
		negative = true
		p.pos++
	}

	start := p.pos
	var n uint64
	overflow := false
	for p.pos < len(p.data) && is_digit(p.data[p.pos]) {
		d := uint64(p.data[p.pos] - '0')
		if n > (math.MaxUint64-d)/10 {
			overflow = true
		} else {
			n = n*10 + d
		}
		p.pos++
	}

	if p.pos >= len(p.data) {
		return nil, decode_error(ErrTruncatedInput, p.pos)
	}
	if p.pos == start || p.data[p.pos] != 'e' {
		return nil, decode_error(ErrUnexpectedToken, p.pos)
	}

	limit := uint64(math.MaxInt64)
	if negative {
		limit++ // -9223372036854775808 is representable
	}
	if overflow || n > limit {
		return nil, decode_error(ErrInvalidInteger, start)
	}
	if negative && n == 0 {
		return nil, decode_error(ErrInvalidInteger, start)
	}
	p.pos++ // e

	if negative {
		return Integer(-int64(n)), nil
	}
	return Integer(n), nil
}

// parse_string reads <length>:<bytes>. The result is copied out of the input.
func (p *parser) parse_string() (ByteString, error) {
	start := p.pos
	length := 0
	for p.pos < len(p.data) && is_digit(p.data[p.pos]) {
		if length <= len(p.data) { // past this it is truncated anyway; stop before int overflow
			length = length*10 + int(p.data[p.pos]-'0')
		}
		p.pos++
	}

	if p.pos >= len(p.data) {
		return nil, decode_error(ErrTruncatedInput, p.pos)
	}
	if p.data[p.pos] != ':' {
		return nil, decode_error(ErrUnexpectedToken, p.pos)
	}
	p.pos++

	if length > len(p.data)-p.pos {
		return nil, decode_error(ErrTruncatedString, start)
	}
	s := bytes.Clone(p.data[p.pos : p.pos+length])
	p.pos += length
	return ByteString(s), nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.max_depth {
		return decode_error(ErrTooDeeplyNested, p.pos)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parse_list() (Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	p.pos++ // l

	result := List{}
	for {
		if p.pos >= len(p.data) {
			return nil, decode_error(ErrUnterminatedList, p.pos)
		}
		if p.data[p.pos] == 'e' {
			p.pos++
			return result, nil
		}
		v, err := p.parse_value()
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
}

func (p *parser) parse_dict() (Value, error) {
	result := Dictionary{}
	err := p.parse_dict_entries(func(key ByteString, _ int) error {
		v, err := p.parse_value()
		if err != nil {
			return err
		}
		result[string(key)] = v // duplicate keys: last one wins
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parse_dict_entries walks d(<key><value>)*e, decoding each key and handing the value to
// on_entry, which must consume it. value_start is the offset of the value's first byte.
func (p *parser) parse_dict_entries(on_entry func(key ByteString, value_start int) error) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.leave()
	p.pos++ // d

	for {
		if p.pos >= len(p.data) {
			return decode_error(ErrUnterminatedDictionary, p.pos)
		}

		c := p.data[p.pos]
		switch {
		case c == 'e':
			p.pos++
			return nil
		case c == 'i' || c == 'l' || c == 'd':
			return decode_error(ErrNonStringKey, p.pos)
		case !is_digit(c):
			return decode_error(ErrUnexpectedToken, p.pos)
		}

		key, err := p.parse_string()
		if err != nil {
			return err
		}
		if p.pos >= len(p.data) {
			return decode_error(ErrUnterminatedDictionary, p.pos)
		}
		if err := on_entry(key, p.pos); err != nil {
			return err
		}
	}
}
