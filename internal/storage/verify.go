package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

// FileStatus is the result of checking one listed file against the local disk.
type FileStatus struct {
	File     TorrentFile
	FullPath string
	Exists   bool
	Actual   int64
	Err      error
}

func (s FileStatus) OK() bool {
	return s.Err == nil && s.Exists && s.Actual == s.File.Size
}

// VerifyFiles checks that each file exists under base_dir with its declared size. Contents are
// not hashed.
func VerifyFiles(base_dir string, files []TorrentFile) []FileStatus {
	results := make([]FileStatus, 0, len(files))
	for _, f := range files {
		status := FileStatus{File: f}

		full_path, err := resolve(base_dir, f.Path)
		if err != nil {
			status.Err = err
			results = append(results, status)
			continue
		}
		status.FullPath = full_path

		info, err := os.Stat(full_path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			status.Err = err
		case info.IsDir():
			status.Err = fmt.Errorf("%s is a directory", full_path)
		default:
			status.Exists = true
			status.Actual = info.Size()
		}
		results = append(results, status)
	}
	return results
}

// resolve joins a '/' separated descriptor path onto base_dir, refusing paths that would land
// outside it.
func resolve(base_dir, path string) (string, error) {
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if s == ".." || s == "" || strings.ContainsRune(s, filepath.Separator) {
			return "", fmt.Errorf("unsafe path %q in descriptor", path)
		}
	}
	return filepath.Join(append([]string{base_dir}, segments...)...), nil
}
