package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Reads and writes descriptor files. Writes go through a temporary file and a rename, so a reader
// never sees a half-written descriptor.

const backup_suffix = ".bak.zst"

type Options struct {
	// Backup keeps the previous contents, zstd compressed, next to the file.
	Backup bool
}

// zstd encoders and decoders are safe for concurrent use, so one of each is shared
var (
	zstd_encoder *zstd.Encoder
	zstd_decoder *zstd.Decoder
)

func init() {
	var err error
	zstd_encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		panic("storage: zstd encoder initialization failed: " + err.Error())
	}
	zstd_decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("storage: zstd decoder initialization failed: " + err.Error())
	}
}

func BackupPath(path string) string {
	return path + backup_suffix
}

func ReadDescriptor(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read file at path %s: %w", path, err)
	}
	return data, nil
}

// WriteDescriptor replaces the file at path with data, keeping its permissions if it exists.
func WriteDescriptor(path string, data []byte, opts Options) error {
	mode := fs.FileMode(0644)
	previous, err := os.ReadFile(path)
	switch {
	case err == nil:
		if info, err := os.Stat(path); err == nil {
			mode = info.Mode().Perm()
		}
		if opts.Backup {
			if err := write_atomic(BackupPath(path), zstd_encoder.EncodeAll(previous, nil), mode); err != nil {
				return fmt.Errorf("writing backup of %s: %w", path, err)
			}
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("reading %s before overwrite: %w", path, err)
	}

	if err := write_atomic(path, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// RestoreBackup puts the contents saved by the last backed-up write back in place. The backup is
// kept.
func RestoreBackup(path string) error {
	compressed, err := os.ReadFile(BackupPath(path))
	if err != nil {
		return fmt.Errorf("reading backup of %s: %w", path, err)
	}
	data, err := zstd_decoder.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("zstd decompress backup of %s: %w", path, err)
	}
	return WriteDescriptor(path, data, Options{})
}

func write_atomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp_name := tmp.Name()
	defer os.Remove(tmp_name) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp_name, mode); err != nil {
		return err
	}
	return os.Rename(tmp_name, path)
}
