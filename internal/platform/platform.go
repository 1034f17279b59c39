// Package platform identifies the host operating system family.
//
// Detect is a pure function over Inputs; Probe gathers those inputs from
// the running system. Everything downstream switches on Family instead of
// matching release strings again.
package platform

import (
	"fmt"
	"strings"
)

// Family is the closed set of platforms the installer knows how to provision.
type Family int

const (
	Unknown Family = iota
	Arch
	Debian
	RHEL
	MacOS
	BSD
)

// Families lists every Family value, Unknown included.
func Families() []Family {
	return []Family{Unknown, Arch, Debian, RHEL, MacOS, BSD}
}

func (f Family) String() string {
	switch f {
	case Arch:
		return "arch"
	case Debian:
		return "debian"
	case RHEL:
		return "rhel"
	case MacOS:
		return "macos"
	case BSD:
		return "bsd"
	default:
		return "unknown"
	}
}

// ParseFamily maps the names used in configuration files back to a Family.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families() {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return Unknown, fmt.Errorf("unknown platform family %q", s)
}

// MarshalText lets Family be used as a map key in YAML and JSON.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (f *Family) UnmarshalText(b []byte) error {
	parsed, err := ParseFamily(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Profile is the result of detection. It is computed once per run.
type Profile struct {
	Family Family
	// Markers are the distribution identifiers that led to the decision,
	// e.g. "arch" or "ubuntu", sorted and de-duplicated.
	Markers []string
}

func (p Profile) String() string {
	if len(p.Markers) == 0 {
		return p.Family.String()
	}
	return fmt.Sprintf("%s (%s)", p.Family, strings.Join(p.Markers, ", "))
}
