package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zsh-setup/internal/runner"
)

const (
	archRelease = `NAME="Arch Linux"
PRETTY_NAME="Arch Linux"
ID=arch
BUILD_ID=rolling
HOME_URL="https://archlinux.org/"
`
	ubuntuRelease = `NAME="Ubuntu"
VERSION="22.04.3 LTS (Jammy Jellyfish)"
ID=ubuntu
ID_LIKE=debian
PRETTY_NAME="Ubuntu 22.04.3 LTS"
`
	rockyRelease = `NAME="Rocky Linux"
ID="rocky"
ID_LIKE="rhel centos fedora"
`
	manjaroLSB = `DISTRIB_ID="ManjaroLinux"
DISTRIB_DESCRIPTION="Manjaro Linux"
`
	alpineRelease = `NAME="Alpine Linux"
ID=alpine
VERSION_ID=3.19.0
HOME_URL="https://alpinelinux.org/"
`
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		in      Inputs
		want    Family
		markers []string
	}{
		{
			name:    "arch by ID",
			in:      Inputs{OSType: "linux-gnu", ReleaseFiles: map[string]string{"/etc/os-release": archRelease}},
			want:    Arch,
			markers: []string{"arch"},
		},
		{
			name:    "ubuntu is debian-like",
			in:      Inputs{OSType: "linux-gnu", ReleaseFiles: map[string]string{"/etc/os-release": ubuntuRelease}},
			want:    Debian,
			markers: []string{"debian", "ubuntu"},
		},
		{
			name:    "rocky is rhel-like",
			in:      Inputs{OSType: "linux-gnu", ReleaseFiles: map[string]string{"/etc/os-release": rockyRelease}},
			want:    RHEL,
			markers: []string{"centos", "fedora", "rhel", "rocky"},
		},
		{
			name:    "fuzzy fallback on lsb description",
			in:      Inputs{OSType: "linux", ReleaseFiles: map[string]string{"/etc/lsb-release": manjaroLSB}},
			want:    Arch,
			markers: []string{"manjaro"},
		},
		{
			name: "linux via kernel name when OSTYPE is unset",
			in:   Inputs{KernelName: "Linux\n", ReleaseFiles: map[string]string{"/etc/os-release": archRelease}},
			want: Arch,
		},
		{
			name: "darwin",
			in:   Inputs{OSType: "darwin23.0"},
			want: MacOS,
		},
		{
			name: "freebsd by OSTYPE prefix",
			in:   Inputs{OSType: "freebsd14.0"},
			want: BSD,
		},
		{
			name: "freebsd by kernel name",
			in:   Inputs{OSType: "", KernelName: "FreeBSD"},
			want: BSD,
		},
		{
			name: "unrecognised distribution",
			in:   Inputs{OSType: "linux-musl", ReleaseFiles: map[string]string{"/etc/os-release": alpineRelease}},
			want: Unknown,
		},
		{
			name: "linux without release files",
			in:   Inputs{OSType: "linux-gnu"},
			want: Unknown,
		},
		{
			name: "other operating system",
			in:   Inputs{OSType: "msys"},
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.in)
			assert.Equal(t, tt.want, got.Family)
			if tt.markers != nil {
				assert.Equal(t, tt.markers, got.Markers)
			}
			// Detection is deterministic.
			assert.Equal(t, got, Detect(tt.in))
		})
	}
}

func TestDetectPriorityPrefersArch(t *testing.T) {
	// A derivative claiming both arch and debian ancestry resolves to the
	// first family in priority order.
	in := Inputs{OSType: "linux-gnu", ReleaseFiles: map[string]string{
		"/etc/os-release": "ID=custom\nID_LIKE=\"debian arch\"\n",
	}}
	assert.Equal(t, Arch, Detect(in).Family)
}

func TestParseRelease(t *testing.T) {
	fields := ParseRelease("# comment\nNAME=\"Fedora Linux\"\nID=fedora\nbroken line\nVERSION_ID='39'\n")
	assert.Equal(t, map[string]string{
		"NAME":       "Fedora Linux",
		"ID":         "fedora",
		"VERSION_ID": "39",
	}, fields)
}

func TestParseFamilyRoundTrip(t *testing.T) {
	for _, f := range Families() {
		got, err := ParseFamily(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFamily("plan9")
	assert.Error(t, err)
}

func TestProbeReadsReleaseFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "os-release"), []byte(archRelease), 0644))

	fake := runner.NewFake()
	fake.Outputs["uname -s"] = "Linux\n"
	env := map[string]string{"OSTYPE": "linux-gnu"}

	in := Probe(context.Background(), func(k string) string { return env[k] }, fake, []string{filepath.Join(dir, "*-release")})

	assert.Equal(t, "Linux", in.KernelName)
	assert.Len(t, in.ReleaseFiles, 1)
	assert.Equal(t, Arch, Detect(in).Family)
}

func TestProbeSkipsReleaseFilesOffLinux(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "os-release"), []byte(archRelease), 0644))

	fake := runner.NewFake()
	fake.Outputs["uname -s"] = "Darwin\n"
	env := map[string]string{"OSTYPE": "darwin23"}

	in := Probe(context.Background(), func(k string) string { return env[k] }, fake, []string{filepath.Join(dir, "*-release")})

	assert.Empty(t, in.ReleaseFiles)
	assert.Equal(t, MacOS, Detect(in).Family)
}
