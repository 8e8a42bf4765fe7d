package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// statusPalette colors the operator-facing status words. Colors are only
// emitted when the destination is a terminal.
type statusPalette struct {
	on  *color.Color
	off *color.Color
	err *color.Color
}

func newStatusPalette(w io.Writer) *statusPalette {
	p := &statusPalette{
		on:  color.New(color.FgGreen, color.Bold),
		off: color.New(color.FgYellow),
		err: color.New(color.FgRed, color.Bold),
	}
	if !isTerminal(w) {
		p.on.DisableColor()
		p.off.DisableColor()
		p.err.DisableColor()
	} else {
		p.on.EnableColor()
		p.off.EnableColor()
		p.err.EnableColor()
	}
	return p
}

// state renders the persisted flag value
func (p *statusPalette) state(enabled bool) string {
	if enabled {
		return p.on.Sprint("enabled")
	}
	return p.off.Sprint("disabled")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
