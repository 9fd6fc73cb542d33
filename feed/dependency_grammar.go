package feed

import (
	"fmt"
	"strings"

	"github.com/willibrandon/gonuget-acquire/frameworks"
)

// ParseDependencyList splits the pipe-delimited dependency-list string
// from an OData entry's Dependencies property into individual tokens,
// discarding empty ones, and parses each with ParseDependencyToken.
func ParseDependencyList(raw string) ([]Dependency, error) {
	if raw == "" {
		return nil, nil
	}

	var deps []Dependency
	for tok := range strings.SplitSeq(raw, "|") {
		if tok == "" {
			continue
		}
		dep, err := ParseDependencyToken(tok)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// ParseDependencyToken parses one name:versionSpec:frameworkSpec entry.
// Only name is mandatory; versionSpec and frameworkSpec default to
// unbounded and unrestricted respectively.
func ParseDependencyToken(token string) (Dependency, error) {
	parts := strings.SplitN(token, ":", 3)

	name := parts[0]
	if name == "" {
		return Dependency{}, fmt.Errorf("%w: dependency token %q has no package name", ErrProtocol, token)
	}

	versionSpec := ""
	if len(parts) > 1 {
		versionSpec = parts[1]
	}
	frameworkSpec := ""
	if len(parts) > 2 {
		frameworkSpec = parts[2]
	}

	vr, err := ParseVersionRequirement(versionSpec)
	if err != nil {
		return Dependency{}, fmt.Errorf("%w: dependency %q: %v", ErrProtocol, token, err)
	}

	dep := Dependency{
		Name:               NewPackageName(name),
		VersionRequirement: vr,
	}

	if restriction, ok := parseFrameworkSpec(frameworkSpec); ok {
		dep.FrameworkRestrictions = []FrameworkRestriction{restriction}
	}

	return dep, nil
}

// parseFrameworkSpec implements the frameworkSpec branch of the
// dependency-list grammar: empty -> no restriction, a "portable"-prefixed
// spec -> Portable(spec), otherwise attempt framework identifier
// extraction and fall back to no restriction on failure.
func parseFrameworkSpec(spec string) (FrameworkRestriction, bool) {
	if spec == "" {
		return FrameworkRestriction{}, false
	}

	if strings.HasPrefix(strings.ToLower(spec), "portable") {
		return FrameworkRestriction{Kind: FrameworkPortable, Profile: spec}, true
	}

	fw, err := frameworks.ParseFramework(spec)
	if err != nil {
		return FrameworkRestriction{}, false
	}
	return FrameworkRestriction{Kind: FrameworkExactly, Framework: fw}, true
}
