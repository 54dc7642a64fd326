package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/chrispritchard/torrentmeta/internal/export"
	"github.com/chrispritchard/torrentmeta/internal/storage"
	"github.com/chrispritchard/torrentmeta/internal/terminal"
)

func yes_no(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (c *cli) show(args []string) error {
	path, err := c.one_file(pflag.NewFlagSet("show", pflag.ContinueOnError), args)
	if err != nil {
		return err
	}
	d, err := c.load(path)
	if err != nil {
		return err
	}
	metadata, err := d.Metadata()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	rows := [][]string{
		{"name:", metadata.Name},
		{"info hash:", hex.EncodeToString(metadata.InfoHash[:])},
		{"private:", yes_no(metadata.Private)},
		{"pieces:", fmt.Sprintf("%d x %s", metadata.PieceCount, terminal.Size(metadata.PieceLength))},
		{"total size:", terminal.Size(metadata.Length)},
		{"files:", strconv.Itoa(len(metadata.Files))},
	}
	for i, tracker := range metadata.Announcers {
		label := ""
		if i == 0 {
			label = "trackers:"
		}
		rows = append(rows, []string{label, tracker})
	}
	c.print_lines(terminal.AlignColumns(rows))
	return nil
}

func (c *cli) files(args []string) error {
	path, err := c.one_file(pflag.NewFlagSet("files", pflag.ContinueOnError), args)
	if err != nil {
		return err
	}
	d, err := c.load(path)
	if err != nil {
		return err
	}
	files, err := d.Files()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{terminal.Size(f.Size), f.Path}
	}
	c.print_lines(terminal.AlignColumns(rows, 0))
	return nil
}

func (c *cli) hash(args []string) error {
	path, err := c.one_file(pflag.NewFlagSet("hash", pflag.ContinueOnError), args)
	if err != nil {
		return err
	}
	d, err := c.load(path)
	if err != nil {
		return err
	}
	info_hash, err := d.InfoHash()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	digest := d.ContentDigest()

	c.print_lines(terminal.AlignColumns([][]string{
		{"info hash", hex.EncodeToString(info_hash[:])},
		{"blake3", hex.EncodeToString(digest[:])},
	}))
	return nil
}

func (c *cli) dump(args []string) error {
	flags := pflag.NewFlagSet("dump", pflag.ContinueOnError)
	format_name := flags.StringP("format", "f", string(export.Text), "output format: text, json, yaml, cbor or cbor-diag")
	path, err := c.one_file(flags, args)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(*format_name)
	if err != nil {
		return usage_error{err}
	}

	d, err := c.load(path)
	if err != nil {
		return err
	}
	out, err := export.Render(d.Value(), format)
	if err != nil {
		return fmt.Errorf("rendering %s as %s: %w", path, format, err)
	}
	_, err = c.stdout.Write(out)
	return err
}

func (c *cli) verify(args []string) error {
	flags := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	dir := flags.StringP("dir", "d", ".", "directory the listed files were downloaded to")
	path, err := c.one_file(flags, args)
	if err != nil {
		return err
	}
	d, err := c.load(path)
	if err != nil {
		return err
	}
	files, err := d.Files()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	results := storage.VerifyFiles(*dir, files)
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{terminal.Size(r.File.Size), r.File.Path}
	}
	lines := terminal.AlignColumns(rows, 0)

	failed := 0
	for i, r := range results {
		var status string
		switch {
		case r.OK():
			status = "[green]ok"
		case r.Err != nil:
			status = "[red]error: " + r.Err.Error()
		case !r.Exists:
			status = "[red]missing"
		default:
			status = "[yellow]size " + terminal.Size(r.Actual)
		}
		if !r.OK() {
			failed++
			c.logger.Debug("file failed verification", "file", r.File.Path, "exists", r.Exists, "actual", r.Actual)
		}
		lines[i] += "  " + c.color.Color(status)
	}
	c.print_lines(lines)

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, len(results))
	}
	return nil
}

func (c *cli) restore(args []string) error {
	flags := pflag.NewFlagSet("restore", pflag.ContinueOnError)
	if err := c.parse(flags, args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return usagef("restore needs at least one file")
	}
	for _, path := range flags.Args() {
		if err := storage.RestoreBackup(path); err != nil {
			return err
		}
		c.logger.Info("restored descriptor", "file", path, "backup", storage.BackupPath(path))
	}
	return nil
}
