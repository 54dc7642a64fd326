package bencode

import (
	"bytes"
	"testing"

	jackpal "github.com/jackpal/bencode-go"
)

// Other BitTorrent implementations must read what we write and we must read what they write,
// byte for byte.

func interop_sample() map[string]any {
	return map[string]any{
		"announce": "http://tracker.example/announce",
		"comment":  "sample",
		"info": map[string]any{
			"name":         "album",
			"piece length": int64(16384),
			"pieces":       string(bytes.Repeat([]byte{0x01, 0x00, 0xfe}, 20)),
			"files": []any{
				map[string]any{"length": int64(1), "path": []any{"cd1", "01.flac"}},
				map[string]any{"length": int64(-3), "path": []any{"cover.jpg"}},
			},
		},
		"url-list": []any{},
	}
}

func to_value(t *testing.T, v any) Value {
	t.Helper()
	switch v := v.(type) {
	case int64:
		return Integer(v)
	case string:
		return ByteString(v)
	case []any:
		l := List{}
		for _, item := range v {
			l = append(l, to_value(t, item))
		}
		return l
	case map[string]any:
		d := Dictionary{}
		for k, item := range v {
			d[k] = to_value(t, item)
		}
		return d
	}
	t.Fatalf("unexpected type %T", v)
	return nil
}

func TestEncodeMatchesJackpal(t *testing.T) {
	sample := interop_sample()

	var theirs bytes.Buffer
	if err := jackpal.Marshal(&theirs, sample); err != nil {
		t.Fatal(err)
	}

	ours := Encode(to_value(t, sample))
	if !bytes.Equal(ours, theirs.Bytes()) {
		t.Errorf("encodings differ:\nours:   %q\ntheirs: %q", ours, theirs.Bytes())
	}
}

func TestJackpalDecodesOurOutput(t *testing.T) {
	want := to_value(t, interop_sample())

	decoded, err := jackpal.Decode(bytes.NewReader(Encode(want)))
	if err != nil {
		t.Fatal(err)
	}
	if got := to_value(t, decoded); !Equal(got, want) {
		t.Errorf("jackpal decoded %s, want %s", Format(got), Format(want))
	}
}
