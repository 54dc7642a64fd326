package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/chrispritchard/torrentmeta/internal/storage"
	"github.com/chrispritchard/torrentmeta/internal/terminal"
	"github.com/chrispritchard/torrentmeta/internal/torrent"
	"github.com/chrispritchard/torrentmeta/internal/util"
)

// edit changes a descriptor in place and reports how many URLs it added.
type edit = func(d *torrent.Descriptor) (int, error)

type update_result struct {
	path     string
	appended int
	written  bool
}

func (c *cli) announce(args []string) error {
	if len(args) == 0 {
		return usagef("announce needs one of list, add or set")
	}
	action, rest := args[0], args[1:]

	flags := pflag.NewFlagSet("announce "+action, pflag.ContinueOnError)
	var urls []string
	var backup bool
	if action == "add" || action == "set" {
		flags.StringArrayVarP(&urls, "url", "u", nil, "announce URL (repeatable)")
		flags.BoolVar(&backup, "backup", false, "keep a compressed copy of each file before writing it")
	}

	switch action {
	case "list":
		path, err := c.one_file(flags, rest)
		if err != nil {
			return err
		}
		return c.announce_list(path)
	case "add", "set":
		if err := c.parse(flags, rest); err != nil {
			return err
		}
	default:
		return usagef("unknown announce action %q", action)
	}

	if flags.NArg() == 0 {
		return usagef("announce %s needs at least one file", action)
	}
	backup = backup || c.config.Backup

	var change edit
	if action == "add" {
		urls = append(urls, c.config.DefaultTrackers...)
		if len(urls) == 0 {
			return usagef("announce add needs --url or default_trackers in the config")
		}
		change = func(d *torrent.Descriptor) (int, error) {
			return d.AppendAnnounceURLs(as_bytes(urls)...)
		}
	} else {
		if len(urls) == 0 {
			return usagef("announce set needs at least one --url")
		}
		change = func(d *torrent.Descriptor) (int, error) {
			d.SetAnnounceList(as_bytes(urls))
			return len(urls), nil
		}
	}

	return c.update_all(flags.Args(), backup, change)
}

func (c *cli) announce_list(path string) error {
	d, err := c.load(path)
	if err != nil {
		return err
	}
	urls, err := d.AnnounceList()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	lines := make([]string, len(urls))
	for i, u := range urls {
		lines[i] = string(u)
	}
	c.print_lines(lines)
	return nil
}

func as_bytes(urls []string) [][]byte {
	out := make([][]byte, len(urls))
	for i, u := range urls {
		out[i] = []byte(u)
	}
	return out
}

// update_all applies change to every file, config.Concurrency at a time. A file is rewritten only
// when the change left its descriptor dirty.
func (c *cli) update_all(paths []string, backup bool, change edit) error {
	progress := terminal.NewProgress(c.stderr, len(paths), "updating", len(paths) > 1 && is_terminal(c.stderr))

	ops := make([]util.Op[update_result], len(paths))
	for i, path := range paths {
		ops[i] = func() (update_result, error) {
			defer progress.Done()
			return c.update(path, backup, change)
		}
	}
	results, errs := util.Concurrent(ops, c.config.Concurrency)
	progress.Close()

	for _, r := range results {
		c.logger.Info("processed descriptor", "file", r.path, "appended", r.appended, "dirty", r.written)
		status := "[dark_gray]unchanged"
		if r.written {
			status = "[green]updated"
		}
		fmt.Fprintf(c.stdout, "%s %s\n", c.color.Color(status), r.path)
	}
	for _, err := range errs {
		c.logger.Error("update failed", "error", err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files failed", len(errs), len(paths))
	}
	return nil
}

func (c *cli) update(path string, backup bool, change edit) (update_result, error) {
	result := update_result{path: path}

	d, err := c.load(path)
	if err != nil {
		return result, err
	}
	result.appended, err = change(d)
	if err != nil {
		return result, fmt.Errorf("%s: %w", path, err)
	}
	if !d.Dirty() {
		return result, nil
	}

	if err := storage.WriteDescriptor(path, d.ToBytes(), storage.Options{Backup: backup}); err != nil {
		return result, err
	}
	result.written = true
	return result, nil
}
