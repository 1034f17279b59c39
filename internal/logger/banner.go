package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const logo = `         __                     __
 ____ __/ /_        ___ ___ / /___ _____
/_ / (_-/ _ \      (_-</ -_) __/ // / _ \
/__//___/_//_/    /___/\__/\__/\_,_/ .__/
                                  /_/`

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

// hyperlinks is decided once by InitHyperlinks.
var hyperlinks bool

// Banner prints the ASCII logo with an optional subtitle in a rounded box.
func Banner(subtitle string) {
	body := logo
	if subtitle != "" {
		body += "\n\n" + subtitle
	}
	fmt.Fprintln(color.Output, bannerStyle.Render(body))
	record(zerolog.InfoLevel, "%s", "banner: "+subtitle)
}

// Section prints a stage header such as "==> Installing packages".
func Section(title string) {
	fmt.Fprintln(color.Output)
	fmt.Fprintln(color.Output, sectionStyle.Render("==> "+title))
	record(zerolog.InfoLevel, "%s", "section: "+title)
}

// InitHyperlinks decides whether Link emits OSC 8 escape sequences.
func InitHyperlinks(getenv func(string) string) {
	hyperlinks = SupportsHyperlinks(getenv, isatty.IsTerminal(os.Stdout.Fd()))
}

// SupportsHyperlinks reports whether the terminal renders OSC 8 links.
// FORCE_HYPERLINK overrides detection: any value other than "0" enables them.
func SupportsHyperlinks(getenv func(string) string, terminal bool) bool {
	if v := getenv("FORCE_HYPERLINK"); v != "" {
		return v != "0"
	}
	if !terminal {
		return false
	}
	if getenv("DOMTERM") != "" {
		return true
	}
	// VTE-based terminals from 0.50 onwards.
	if v := getenv("VTE_VERSION"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n >= 5000 {
			return true
		}
	}
	switch getenv("TERM_PROGRAM") {
	case "Hyper", "iTerm.app", "terminology", "WezTerm", "vscode":
		return true
	}
	switch getenv("TERM") {
	case "xterm-kitty", "alacritty", "alacritty-direct":
		return true
	}
	return getenv("KONSOLE_VERSION") != ""
}

// Link renders text pointing at url, as a hyperlink when supported and as
// "text (url)" otherwise.
func Link(url, text string) string {
	if hyperlinks {
		return "\033]8;;" + url + "\033\\" + text + "\033]8;;\033\\"
	}
	if text == "" || strings.EqualFold(text, url) {
		return url
	}
	return text + " (" + url + ")"
}
