package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a version string into a NuGetVersion.
//
// Accepts 1 to 4 dot-separated numeric components, an optional
// dash-delimited prerelease label list, and an optional plus-delimited
// build metadata suffix. A four-component version is treated as a
// legacy (Major.Minor.Build.Revision) version.
func Parse(s string) (*NuGetVersion, error) {
	original := s
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("version string cannot be empty")
	}

	rest := s
	var metadata string
	if idx := strings.IndexByte(rest, '+'); idx >= 0 {
		metadata = rest[idx+1:]
		rest = rest[:idx]
		if metadata == "" {
			return nil, fmt.Errorf("invalid version %q: empty build metadata", original)
		}
	}

	// The numeric core is digits and dots; the first byte that isn't
	// one of those marks the start of the prerelease label, which must
	// begin with '-'.
	i := 0
	for i < len(rest) && (rest[i] == '.' || (rest[i] >= '0' && rest[i] <= '9')) {
		i++
	}
	core := rest[:i]
	remainder := rest[i:]

	var prerelease string
	if remainder != "" {
		if remainder[0] != '-' {
			return nil, fmt.Errorf("invalid version %q", original)
		}
		prerelease = remainder[1:]
		if prerelease == "" {
			return nil, fmt.Errorf("invalid version %q: empty prerelease label", original)
		}
	}

	if core == "" {
		return nil, fmt.Errorf("invalid version %q", original)
	}

	segments := strings.Split(core, ".")
	if len(segments) > 4 {
		return nil, fmt.Errorf("invalid version %q: too many components", original)
	}

	nums := make([]int, 4)
	for idx, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("invalid version %q: empty component", original)
		}
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version %q: bad component %q", original, seg)
		}
		nums[idx] = n
	}

	v := &NuGetVersion{
		Major:          nums[0],
		Minor:          nums[1],
		Patch:          nums[2],
		originalString: original,
	}

	if len(segments) == 4 {
		v.Revision = nums[3]
		v.IsLegacyVersion = true
	}

	if prerelease != "" {
		labels := strings.Split(prerelease, ".")
		for _, label := range labels {
			if label == "" {
				return nil, fmt.Errorf("invalid version %q: empty prerelease label", original)
			}
		}
		v.ReleaseLabels = labels
	}

	v.Metadata = metadata

	return v, nil
}

// MustParse parses a version string, panicking on error.
func MustParse(s string) *NuGetVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ToNormalizedString returns the canonical string form of the version.
func (v *NuGetVersion) ToNormalizedString() string {
	return v.format()
}
