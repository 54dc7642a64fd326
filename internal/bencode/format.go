package bencode

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// previewed bytes of a binary string before it is cut short
const format_hex_limit = 16

// Format renders v as an indented tree for display. Printable byte strings are quoted, anything
// else is shown as a length and a hex prefix, e.g. <20 bytes 0a1b...>.
func Format(v Value) string {
	var sb strings.Builder
	format_value(&sb, v, 0)
	return sb.String()
}

func format_value(sb *strings.Builder, v Value, indent int) {
	pad := strings.Repeat("  ", indent)
	switch v := v.(type) {
	case Integer:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case ByteString:
		sb.WriteString(format_string(v))
	case List:
		if len(v) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteString("[\n")
		for _, item := range v {
			sb.WriteString(pad + "  ")
			format_value(sb, item, indent+1)
			sb.WriteString("\n")
		}
		sb.WriteString(pad + "]")
	case Dictionary:
		if len(v) == 0 {
			sb.WriteString("{}")
			return
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("{\n")
		for _, k := range keys {
			sb.WriteString(pad + "  " + format_string([]byte(k)) + ": ")
			format_value(sb, v[k], indent+1)
			sb.WriteString("\n")
		}
		sb.WriteString(pad + "}")
	default:
		sb.WriteString("<nil>")
	}
}

func format_string(s []byte) string {
	if IsText(s) {
		return strconv.Quote(string(s))
	}
	preview := s
	suffix := ""
	if len(preview) > format_hex_limit {
		preview = preview[:format_hex_limit]
		suffix = "..."
	}
	return fmt.Sprintf("<%d bytes %s%s>", len(s), hex.EncodeToString(preview), suffix)
}

// IsText reports whether s is valid UTF-8 with no control characters other than tab and newline.
func IsText(s []byte) bool {
	if !utf8.Valid(s) {
		return false
	}
	for _, r := range string(s) {
		if r < 0x20 && r != '\t' && r != '\n' || r == 0x7f {
			return false
		}
	}
	return true
}
