package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stockscan/internal/scan"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var titleCaser = cases.Title(language.English)

// stateLabel turns a snake_case state name into a display label.
func stateLabel(state scan.State) string {
	return titleCaser.String(strings.ReplaceAll(state.String(), "_", " "))
}

func renderStatus(view scan.View, colorize bool) string {
	line := statusLine(view)
	if colorize {
		if color := statusKindColor(view.StatusKind); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func statusLine(view scan.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", stateLabel(view.State))
	if view.Tag != "" {
		fmt.Fprintf(&b, " %s", view.Tag)
	}
	if view.Status != "" {
		fmt.Fprintf(&b, " %s%s", statusPrefix(view.StatusKind), view.Status)
	}
	fmt.Fprintf(&b, " (pending %d)", view.Pending)
	return b.String()
}

func statusPrefix(kind scan.StatusKind) string {
	switch kind {
	case scan.StatusError:
		return "error: "
	case scan.StatusWarning:
		return "warning: "
	default:
		return ""
	}
}

func formLine(view scan.View) string {
	project := view.ProjectInput
	if project == "" {
		project = "-"
	}
	mode := string(view.BundleMode)
	if mode == "" {
		mode = "-"
	}
	return fmt.Sprintf("direction=%s project=%s qty=%d mode=%s", view.Direction, project, view.Quantity, mode)
}

func statusKindColor(kind scan.StatusKind) string {
	switch kind {
	case scan.StatusSuccess:
		return ansiGreen
	case scan.StatusWarning:
		return ansiYellow
	case scan.StatusError:
		return ansiRed
	case scan.StatusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(writer io.Writer) bool {
	return isTerminal(writer)
}
