package torrent

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

// Descriptor wraps a decoded torrent file. It owns both the original bytes and the decoded tree.
// Fields are checked only when an accessor needs them, so a descriptor with a broken file list
// can still have its trackers edited.
//
// A Descriptor is not safe for concurrent use; callers sharing one must serialize access.
type Descriptor struct {
	raw   []byte
	root  bencode.Dictionary
	dirty bool
}

// FromBytes decodes a descriptor from the start of data. Bytes after the first complete value are
// ignored and not kept.
func FromBytes(data []byte) (*Descriptor, error) {
	return FromBytesWith(data, bencode.Decoder{})
}

// FromBytesStrict is FromBytes, but rejects trailing bytes.
func FromBytesStrict(data []byte) (*Descriptor, error) {
	return FromBytesWith(data, bencode.Decoder{Strict: true})
}

// FromBytesWith decodes using the given decoder options.
func FromBytesWith(data []byte, decoder bencode.Decoder) (*Descriptor, error) {
	decoded, n, err := decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	root, ok := decoded.(bencode.Dictionary)
	if !ok {
		return nil, missing("(root dictionary)")
	}
	return &Descriptor{raw: bytes.Clone(data[:n]), root: root}, nil
}

// Dirty reports whether the tree has changed since it was decoded or last serialized.
func (d *Descriptor) Dirty() bool {
	return d.dirty
}

// Value exposes the decoded tree for reading. It must not be modified.
func (d *Descriptor) Value() bencode.Dictionary {
	return d.root
}

// ToBytes serializes the descriptor. An unmodified descriptor returns its original bytes exactly,
// even if they are not in canonical form; a modified one is re-encoded, and that encoding becomes
// the new baseline.
func (d *Descriptor) ToBytes() []byte {
	return bytes.Clone(d.bytes())
}

func (d *Descriptor) bytes() []byte {
	if d.dirty {
		d.raw = bencode.Encode(d.root)
		d.dirty = false
	}
	return d.raw
}

// AnnounceList returns the URLs stored under "announce", in order. A single string (the plain
// BEP 3 shape) is returned as a one element list.
func (d *Descriptor) AnnounceList() ([][]byte, error) {
	list, err := d.announce()
	if err != nil {
		return nil, err
	}
	urls := make([][]byte, len(list))
	for i, v := range list {
		urls[i] = bytes.Clone(v.(bencode.ByteString))
	}
	return urls, nil
}

// announce returns the announce value as a list checked to hold only byte strings. The list may
// share storage with the tree.
func (d *Descriptor) announce() (bencode.List, error) {
	v, exists := d.root["announce"]
	if !exists {
		return nil, missing("announce")
	}
	switch v := v.(type) {
	case bencode.ByteString:
		return bencode.List{v}, nil
	case bencode.List:
		for i, item := range v {
			if _, ok := item.(bencode.ByteString); !ok {
				return nil, wrong_type[bencode.ByteString](fmt.Sprintf("announce[%d]", i), item)
			}
		}
		return v, nil
	}
	return nil, wrong_type[bencode.List]("announce", v)
}

// AppendAnnounceURLs appends each url that is not already in the announce list, comparing bytes
// exactly, and returns how many were added. Existing entries keep their order. The descriptor only
// becomes dirty if something was appended. A missing announce list is treated as empty.
func (d *Descriptor) AppendAnnounceURLs(urls ...[]byte) (int, error) {
	list, err := d.announce()
	if errors_is_missing(err) {
		list, err = bencode.List{}, nil
	}
	if err != nil {
		return 0, err
	}

	appended := 0
	for _, url := range urls {
		if contains(list, url) {
			continue
		}
		list = append(list, bencode.ByteString(bytes.Clone(url)))
		appended++
	}

	if appended > 0 {
		d.root["announce"] = list
		d.dirty = true
	}
	return appended, nil
}

func contains(list bencode.List, url []byte) bool {
	for _, v := range list {
		if bytes.Equal(v.(bencode.ByteString), url) {
			return true
		}
	}
	return false
}

// SetAnnounceList replaces the announce list with urls, in the given order. The descriptor is
// always marked dirty, even if the list is unchanged.
func (d *Descriptor) SetAnnounceList(urls [][]byte) {
	list := make(bencode.List, len(urls))
	for i, url := range urls {
		list[i] = bencode.ByteString(bytes.Clone(url))
	}
	d.root["announce"] = list
	d.dirty = true
}

// Files lists the files described by the info dictionary. A single-file torrent (info.length)
// yields one entry named info.name. A multi-file torrent (info.files) yields one entry per file
// with its path segments joined by '/'.
func (d *Descriptor) Files() ([]TorrentFile, error) {
	info, err := Get[bencode.Dictionary](d.root, "info")
	if err != nil {
		return nil, err
	}

	if _, single := info["length"]; single {
		length, err := lookup[bencode.Integer](info, "info", "length")
		if err != nil {
			return nil, err
		}
		name, err := lookup[bencode.ByteString](info, "info", "name")
		if err != nil {
			return nil, err
		}
		return []TorrentFile{{Path: string(name), Size: int64(length)}}, nil
	}

	files, err := lookup[bencode.List](info, "info", "files")
	if err != nil {
		return nil, err
	}

	file_set := make([]TorrentFile, 0, len(files))
	for i, file := range files {
		prefix := fmt.Sprintf("info.files[%d]", i)
		entry, ok := file.(bencode.Dictionary)
		if !ok {
			return nil, wrong_type[bencode.Dictionary](prefix, file)
		}
		length, err := lookup[bencode.Integer](entry, prefix, "length")
		if err != nil {
			return nil, err
		}
		path, err := lookup_strings(entry, prefix, "path")
		if err != nil {
			return nil, err
		}
		file_set = append(file_set, TorrentFile{
			Path: strings.Join(path, "/"),
			Size: int64(length),
		})
	}
	return file_set, nil
}
