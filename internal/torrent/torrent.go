package torrent

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/chrispritchard/torrentmeta/internal/bencode"
	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

// Reads the properties of a descriptor beyond its tracker and file lists

const piece_hash_size = 20

func (d *Descriptor) info() (bencode.Dictionary, error) {
	return Get[bencode.Dictionary](d.root, "info")
}

func (d *Descriptor) Name() (string, error) {
	info, err := d.info()
	if err != nil {
		return "", err
	}
	name, err := lookup[bencode.ByteString](info, "info", "name")
	return string(name), err
}

func (d *Descriptor) PieceLength() (int64, error) {
	info, err := d.info()
	if err != nil {
		return 0, err
	}
	piece_length, err := lookup[bencode.Integer](info, "info", "piece length")
	return int64(piece_length), err
}

// PieceCount is the number of 20 byte SHA-1 hashes in info.pieces.
func (d *Descriptor) PieceCount() (int, error) {
	info, err := d.info()
	if err != nil {
		return 0, err
	}
	pieces, err := lookup[bencode.ByteString](info, "info", "pieces")
	if err != nil {
		return 0, err
	}
	if len(pieces)%piece_hash_size != 0 {
		return 0, fmt.Errorf("invalid torrent: info.pieces is %d bytes, not a multiple of %d", len(pieces), piece_hash_size)
	}
	return len(pieces) / piece_hash_size, nil
}

// Private reports the BEP 27 private flag. An absent flag means public.
func (d *Descriptor) Private() (bool, error) {
	info, err := d.info()
	if err != nil {
		return false, err
	}
	if _, exists := info["private"]; !exists {
		return false, nil
	}
	private, err := lookup[bencode.Integer](info, "info", "private")
	return private == 1, err
}

func (d *Descriptor) TotalLength() (int64, error) {
	files, err := d.Files()
	if err != nil {
		return 0, err
	}
	var length int64
	for _, f := range files {
		length += f.Size
	}
	return length, nil
}

// AnnounceTiers reads the BEP 12 announce-list, a list of tiers each holding a list of URLs.
// It is optional, so an absent list is not an error.
func (d *Descriptor) AnnounceTiers() ([][]string, error) {
	tiers, err := Get[bencode.List](d.root, "announce-list")
	if errors_is_missing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	result := make([][]string, 0, len(tiers))
	for i, entry := range tiers {
		field := fmt.Sprintf("announce-list[%d]", i)
		sub_list, ok := entry.(bencode.List)
		if !ok {
			return nil, wrong_type[bencode.List](field, entry)
		}
		tier, err := string_list(sub_list, field)
		if err != nil {
			return nil, err
		}
		result = append(result, tier)
	}
	return result, nil
}

// Trackers merges announce and announce-list into one list without duplicates, announce first.
// Malformed entries are skipped; use AnnounceList or AnnounceTiers to see the errors.
func (d *Descriptor) Trackers() []string {
	var announcers []string
	seen := map[string]bool{}
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			announcers = append(announcers, u)
		}
	}

	urls, _ := d.AnnounceList()
	for _, u := range urls {
		add(string(u))
	}
	tiers, _ := d.AnnounceTiers()
	for _, tier := range tiers {
		for _, u := range tier {
			add(u)
		}
	}
	return announcers
}

// InfoHash is the SHA-1 of the info dictionary exactly as it appears in the serialized
// descriptor.
func (d *Descriptor) InfoHash() ([20]byte, error) {
	var nil_hash [20]byte
	if _, err := d.info(); err != nil {
		return nil_hash, err
	}
	raw, err := bencode.RawField(d.bytes(), "info")
	if errors.Is(err, bencode.ErrKeyNotFound) {
		return nil_hash, missing("info")
	}
	if err != nil {
		return nil_hash, err
	}
	return sha1.Sum(raw), nil
}

// ContentDigest is the BLAKE3 digest of the whole serialized descriptor, for content addressed
// storage.
func (d *Descriptor) ContentDigest() [32]byte {
	return blake3.Sum256(d.bytes())
}

// MagnetLink builds a magnet URI from the info hash, name and trackers.
func (d *Descriptor) MagnetLink() (string, error) {
	hash, err := d.InfoHash()
	if err != nil {
		return "", err
	}

	var link strings.Builder
	link.WriteString("magnet:?xt=urn:btih:" + hex.EncodeToString(hash[:]))
	if name, err := d.Name(); err == nil && name != "" {
		link.WriteString("&dn=" + url.QueryEscape(name))
	}
	for _, tracker := range d.Trackers() {
		link.WriteString("&tr=" + url.QueryEscape(tracker))
	}
	return link.String(), nil
}

// Metadata gathers the commonly displayed properties. Every field it reads must be valid.
func (d *Descriptor) Metadata() (TorrentMetadata, error) {
	var nil_torrent TorrentMetadata

	hash, err := d.InfoHash()
	if err != nil {
		return nil_torrent, err
	}
	name, err := d.Name()
	if err != nil {
		return nil_torrent, err
	}
	piece_length, err := d.PieceLength()
	if err != nil {
		return nil_torrent, err
	}
	piece_count, err := d.PieceCount()
	if err != nil {
		return nil_torrent, err
	}
	private, err := d.Private()
	if err != nil {
		return nil_torrent, err
	}
	files, err := d.Files()
	if err != nil {
		return nil_torrent, err
	}

	var length int64
	for _, f := range files {
		length += f.Size
	}

	return TorrentMetadata{
		Announcers:  d.Trackers(),
		InfoHash:    hash,
		Name:        name,
		PieceLength: piece_length,
		PieceCount:  piece_count,
		Length:      length,
		Private:     private,
		Files:       files,
	}, nil
}
