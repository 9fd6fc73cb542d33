package version

import "strconv"

// Compare returns -1, 0, or 1 depending on whether v is less than, equal
// to, or greater than other. Build metadata is ignored per SemVer 2.0.
// The Revision component only participates when both versions are legacy
// (four-part) versions; otherwise it is ignored, matching how NuGet
// compares a legacy version against its three-part equivalent.
func (v *NuGetVersion) Compare(other *NuGetVersion) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	if v.IsLegacyVersion && other.IsLegacyVersion {
		if c := compareInt(v.Revision, other.Revision); c != 0 {
			return c
		}
	}
	return compareReleaseLabels(v.ReleaseLabels, other.ReleaseLabels)
}

// Equals reports whether v and other compare equal.
func (v *NuGetVersion) Equals(other *NuGetVersion) bool {
	return v.Compare(other) == 0
}

// LessThan reports whether v sorts before other.
func (v *NuGetVersion) LessThan(other *NuGetVersion) bool {
	return v.Compare(other) < 0
}

// GreaterThan reports whether v sorts after other.
func (v *NuGetVersion) GreaterThan(other *NuGetVersion) bool {
	return v.Compare(other) > 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareReleaseLabels compares two prerelease label lists per SemVer 2.0
// precedence rules: a version without prerelease labels outranks one with
// labels, numeric labels sort below alphanumeric ones, and a longer label
// list outranks a shorter one that is its prefix.
func compareReleaseLabels(a, b []string) int {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	if len(a) == 0 {
		return 1
	}
	if len(b) == 0 {
		return -1
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if c := compareLabel(a[i], b[i]); c != 0 {
			return c
		}
	}

	return compareInt(len(a), len(b))
}

func compareLabel(a, b string) int {
	aNum, aIsNum := asNumericLabel(a)
	bNum, bIsNum := asNumericLabel(b)

	switch {
	case aIsNum && bIsNum:
		return compareInt(aNum, bNum)
	case aIsNum && !bIsNum:
		return -1
	case !aIsNum && bIsNum:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asNumericLabel(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
