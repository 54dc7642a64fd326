package torrent_files

// TorrentMetadata is a flattened summary of a descriptor, for display.
type TorrentMetadata struct {
	Announcers  []string
	InfoHash    [20]byte
	Name        string
	PieceLength int64
	PieceCount  int
	Length      int64
	Private     bool
	Files       []TorrentFile
}

// TorrentFile is one file listed by a descriptor: its path relative to the download root, with
// segments joined by '/', and its size in bytes.
type TorrentFile struct {
	Path string
	Size int64
}
