// Package export renders a decoded bencode tree in other formats for inspection and for tools
// that do not speak bencode.
package export

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
)

type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	YAML     Format = "yaml"
	CBOR     Format = "cbor"
	CBORDiag Format = "cbor-diag"
)

const (
	hex_key    = "hex"
	hex_prefix = "0x"
)

var Formats = []Format{Text, JSON, YAML, CBOR, CBORDiag}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %v)", s, Formats)
}

// cbor_mode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys, so the same tree
// always produces the same bytes, as bencode does.
var cbor_mode cbor.EncMode

func init() {
	var err error
	cbor_mode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// Render converts v to the requested format.
func Render(v bencode.Value, format Format) ([]byte, error) {
	switch format {
	case Text:
		return []byte(bencode.Format(v) + "\n"), nil
	case JSON:
		out, err := json.MarshalIndent(Native(v), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case YAML:
		return yaml.Marshal(Native(v))
	case CBOR:
		return cbor_mode.Marshal(native_cbor(v))
	case CBORDiag:
		encoded, err := cbor_mode.Marshal(native_cbor(v))
		if err != nil {
			return nil, err
		}
		diag, err := cbor.Diagnose(encoded)
		if err != nil {
			return nil, err
		}
		return []byte(diag + "\n"), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Native converts v into plain Go values for text formats. Byte strings that are readable text
// become strings; binary ones become {"hex": "..."}. Binary dictionary keys are written as
// "0x" followed by their hex.
func Native(v bencode.Value) any {
	switch v := v.(type) {
	case bencode.Integer:
		return int64(v)
	case bencode.ByteString:
		if bencode.IsText(v) {
			return string(v)
		}
		return map[string]any{hex_key: hex.EncodeToString(v)}
	case bencode.List:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = Native(item)
		}
		return items
	case bencode.Dictionary:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[native_key(k)] = Native(item)
		}
		return m
	}
	return nil
}

func native_key(k string) string {
	if bencode.IsText([]byte(k)) {
		return k
	}
	return hex_prefix + hex.EncodeToString([]byte(k))
}

// native_cbor keeps binary byte strings as CBOR byte strings, which CBOR can represent directly.
func native_cbor(v bencode.Value) any {
	switch v := v.(type) {
	case bencode.Integer:
		return int64(v)
	case bencode.ByteString:
		if bencode.IsText(v) {
			return string(v)
		}
		return []byte(v)
	case bencode.List:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = native_cbor(item)
		}
		return items
	case bencode.Dictionary:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[native_key(k)] = native_cbor(item)
		}
		return m
	}
	return nil
}
