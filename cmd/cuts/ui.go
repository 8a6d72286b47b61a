package main

import (
	"io"

	"github.com/fatih/color"
)

var (
	infoColor    = color.New(color.FgCyan)
	stepColor    = color.New(color.FgBlue)
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen, color.Bold)
)

func infof(w io.Writer, format string, a ...any) {
	infoColor.Fprintf(w, "[*] "+format+"\n", a...)
}

func stepf(w io.Writer, format string, a ...any) {
	stepColor.Fprintf(w, "[>] "+format+"\n", a...)
}

func warnf(w io.Writer, format string, a ...any) {
	warnColor.Fprintf(w, "[!] "+format+"\n", a...)
}

func successf(w io.Writer, format string, a ...any) {
	successColor.Fprintf(w, "[+++] "+format+"\n", a...)
}
