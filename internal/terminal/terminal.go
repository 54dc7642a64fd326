package terminal

import (
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/colorstring"
	"github.com/rivo/uniseg"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Progress tracks a batch of descriptors being processed. It draws nothing unless visible is set,
// so piped output stays clean.
type Progress struct {
	bar *progressbar.ProgressBar
}

func NewProgress(w io.Writer, total int, description string, visible bool) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{bar: bar}
}

// Done marks one item complete; safe to call from several goroutines.
func (p *Progress) Done() {
	p.bar.Add(1)
}

func (p *Progress) Close() {
	p.bar.Finish()
}

// Colorizer expands [green]-style markup, or strips it when colour is off.
type Colorizer struct {
	c colorstring.Colorize
}

func NewColorizer(enabled bool) Colorizer {
	return Colorizer{c: colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !enabled,
		Reset:   true,
	}}
}

func (c Colorizer) Color(s string) string {
	return c.c.Color(s)
}

// Size renders a byte count the way file managers do, e.g. "1.5 MiB".
func Size(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// AlignColumns pads each cell to the display width of the widest cell in its column, so wide
// characters in file names keep the columns straight. Columns listed in right_aligned are padded
// on the left. The last column is never padded on the right.
func AlignColumns(rows [][]string, right_aligned ...int) []string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], uniseg.StringWidth(cell))
		}
	}

	right := make(map[int]bool, len(right_aligned))
	for _, i := range right_aligned {
		right[i] = true
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i > 0 {
				line.WriteString("  ")
			}
			padding := strings.Repeat(" ", widths[i]-uniseg.StringWidth(cell))
			switch {
			case right[i]:
				line.WriteString(padding + cell)
			case i == len(row)-1:
				line.WriteString(cell)
			default:
				line.WriteString(cell + padding)
			}
		}
		lines = append(lines, line.String())
	}
	return lines
}
