package platform

import (
	"bufio"
	"regexp"
	"sort"
	"strings"
)

// Inputs are the raw facts detection works from.
type Inputs struct {
	// OSType is the OSTYPE shell variable, e.g. "linux-gnu" or "darwin23".
	OSType string
	// KernelName is the output of `uname -s`.
	KernelName string
	// ReleaseFiles maps release metadata file paths to their contents.
	ReleaseFiles map[string]string
}

// distroMarkers are exact NAME/ID/ID_LIKE tokens, tested in priority order.
var distroMarkers = []struct {
	family  Family
	markers []string
}{
	{Arch, []string{"arch", "archarm", "manjaro", "endeavouros", "artix", "garuda", "arcolinux"}},
	{Debian, []string{"debian", "ubuntu", "linuxmint", "pop", "elementary", "kali", "raspbian", "zorin", "neon", "deepin"}},
	{RHEL, []string{"rhel", "fedora", "centos", "rocky", "almalinux", "ol", "amzn", "scientific"}},
}

// fuzzyMarkers are broader aliases used when no exact marker matched.
var fuzzyMarkers = []struct {
	family  Family
	pattern *regexp.Regexp
}{
	{Arch, regexp.MustCompile(`\barch\b|manjaro|pacman`)},
	{Debian, regexp.MustCompile(`debian|ubuntu|mint|\bdeb\b|\bapt\b`)},
	{RHEL, regexp.MustCompile(`red ?hat|fedora|centos|\brpm\b|yum|dnf`)},
}

// Detect classifies the host. It has no side effects.
func Detect(in Inputs) Profile {
	osType := strings.ToLower(in.OSType)
	kernel := strings.ToLower(strings.TrimSpace(in.KernelName))

	switch {
	case strings.HasPrefix(osType, "darwin") || kernel == "darwin":
		return Profile{Family: MacOS}
	case strings.HasPrefix(osType, "freebsd") || kernel == "freebsd":
		return Profile{Family: BSD}
	case strings.HasPrefix(osType, "linux") || kernel == "linux":
		return detectLinux(in.ReleaseFiles)
	}
	return Profile{Family: Unknown}
}

func detectLinux(files map[string]string) Profile {
	tokens := releaseTokens(files)

	for _, d := range distroMarkers {
		var hits []string
		for _, m := range d.markers {
			if tokens[m] {
				hits = append(hits, m)
			}
		}
		if len(hits) > 0 {
			sort.Strings(hits)
			return Profile{Family: d.family, Markers: hits}
		}
	}

	text := strings.ToLower(joinContents(files))
	for _, f := range fuzzyMarkers {
		if m := f.pattern.FindString(text); m != "" {
			return Profile{Family: f.family, Markers: []string{m}}
		}
	}
	return Profile{Family: Unknown, Markers: sortedKeys(tokens)}
}

// releaseTokens collects the lower-cased words of every NAME, ID and ID_LIKE
// field across all release files.
func releaseTokens(files map[string]string) map[string]bool {
	tokens := make(map[string]bool)
	for _, content := range files {
		for key, value := range ParseRelease(content) {
			switch key {
			case "NAME", "ID", "ID_LIKE", "DISTRIB_ID":
				for _, word := range strings.Fields(strings.ToLower(value)) {
					tokens[word] = true
				}
			}
		}
	}
	return tokens
}

// ParseRelease parses os-release style KEY=VALUE content. Quotes around
// values are removed; comments and malformed lines are ignored.
func ParseRelease(content string) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		fields[strings.TrimSpace(key)] = value
	}
	return fields
}

// joinContents concatenates file contents in path order so fuzzy matching
// is deterministic.
func joinContents(files map[string]string) string {
	var b strings.Builder
	for _, path := range sortedKeys(files) {
		b.WriteString(files[path])
		b.WriteByte('\n')
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
