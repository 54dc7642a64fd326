package bencode

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		input Value
		want  string
	}{
		{"zero", Integer(0), "i0e"},
		{"positive", Integer(42), "i42e"},
		{"negative", Integer(-5), "i-5e"},
		{"min int64", Integer(math.MinInt64), "i-9223372036854775808e"},
		{"string", String("spam"), "4:spam"},
		{"empty string", ByteString{}, "0:"},
		{"nil string", ByteString(nil), "0:"},
		{"binary string", ByteString{0, 'e', 0xff}, "3:\x00e\xff"},
		{"empty list", List{}, "le"},
		{"list order preserved", List{String("b"), Integer(1), String("a")}, "l1:bi1e1:ae"},
		{"empty dict", Dictionary{}, "de"},
		{
			"dict keys sorted",
			Dictionary{"spam": String("eggs"), "cow": String("moo"), "": Integer(0)},
			"d0:i0e3:cow3:moo4:spam4:eggse",
		},
		{
			"dict keys sorted bytewise",
			Dictionary{"\xff": Integer(1), "a": Integer(2), "B": Integer(3), "ab": Integer(4)},
			"d1:Bi3e1:ai2e2:abi4e1:\xffi1ee",
		},
		{
			"nested",
			Dictionary{"key": List{Integer(1), Integer(2)}},
			"d3:keyli1ei2eee",
		},
		{"nil value", nil, "0:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.input)
			if string(got) != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeCanonicalRegardlessOfInsertionOrder(t *testing.T) {
	keys := []string{"name", "length", "piece length", "pieces", "files", "private", "a", "zz"}

	forward := Dictionary{}
	for i, k := range keys {
		forward[k] = Integer(i)
	}
	backward := Dictionary{}
	for i := len(keys) - 1; i >= 0; i-- {
		backward[keys[i]] = Integer(i)
	}

	want := Encode(forward)
	for range 20 {
		if got := Encode(backward); !bytes.Equal(got, want) {
			t.Fatalf("encodings differ:\n%q\n%q", got, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	values := []Value{
		Integer(0),
		Integer(math.MaxInt64),
		Integer(math.MinInt64),
		String(""),
		ByteString{0, 1, 2, 3, ':', 'e'},
		List{},
		List{List{}, Dictionary{}, String("x")},
		Dictionary{
			"announce": Strings("http://a/announce", "udp://b:80"),
			"info": Dictionary{
				"name":         String("dir"),
				"piece length": Integer(262144),
				"pieces":       ByteString(bytes.Repeat([]byte{0xab}, 40)),
				"files": List{
					Dictionary{"path": Strings("a", "b.txt"), "length": Integer(10)},
					Dictionary{"path": Strings("c"), "length": Integer(0)},
				},
			},
		},
	}

	for _, v := range values {
		encoded := Encode(v)
		decoded, n, err := Decode(encoded)
		if err != nil {
			t.Errorf("Decode(Encode(%s)): %v", Format(v), err)
			continue
		}
		if n != len(encoded) {
			t.Errorf("consumed %d of %d bytes", n, len(encoded))
		}
		if !Equal(decoded, v) {
			t.Errorf("round trip mismatch: got %s, want %s", Format(decoded), Format(v))
		}
		if again := Encode(decoded); !bytes.Equal(again, encoded) {
			t.Errorf("re-encoding differs: %q vs %q", again, encoded)
		}
	}
}

func TestAppendEncode(t *testing.T) {
	dst := []byte("prefix")
	got := AppendEncode(dst, List{Integer(1)})
	if string(got) != "prefixli1ee" {
		t.Errorf("AppendEncode() = %q", got)
	}
}

type failing_writer struct{}

func (failing_writer) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncodeTo(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, Dictionary{"a": Integer(1)}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "d1:ai1ee" {
		t.Errorf("EncodeTo() wrote %q", buf.String())
	}

	if err := EncodeTo(failing_writer{}, Integer(1)); err == nil {
		t.Error("EncodeTo() should surface writer errors")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil and empty string", ByteString(nil), ByteString{}, true},
		{"nil and empty list", List(nil), List{}, true},
		{"different kinds", Integer(1), String("1"), false},
		{"different list length", List{Integer(1)}, List{}, false},
		{"dict with different key", Dictionary{"a": Integer(1)}, Dictionary{"b": Integer(1)}, false},
		{"dict equal", Dictionary{"a": List{String("x")}}, Dictionary{"a": List{String("x")}}, true},
		{"both nil", nil, nil, true},
		{"nil and value", nil, Integer(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(Integer(1)) != KindInteger || KindOf(String("")) != KindByteString ||
		KindOf(List{}) != KindList || KindOf(Dictionary{}) != KindDictionary || KindOf(nil) != KindInvalid {
		t.Error("KindOf() misreported a variant")
	}
	if KindDictionary.String() != "dictionary" {
		t.Errorf("Kind.String() = %q", KindDictionary.String())
	}
}
