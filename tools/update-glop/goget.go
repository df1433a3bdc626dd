// Package updateglop digs the pinned revision of the glop fork out of
// 'go get' output. The fork declares its module path as the upstream
// repo, so 'go get' on it always fails, but the failure message carries
// the resolved pseudo-version we want for the replace directive.
package updateglop

import (
	"fmt"
	"regexp"
	"strings"
)

// e.g. 'v0.0.0-20250422182037-10ef83c0f74c'
var revPattern = regexp.MustCompile(`v[[:digit:]]+\.[[:digit:]]+\.[[:digit:]]+-[[:digit:]]{14}-[[:xdigit:]]{12}`)

func ParseRev(goGetCommandData string) (string, error) {
	line, _, found := strings.Cut(goGetCommandData, ": parsing go.mod")
	if !found {
		return "", fmt.Errorf("couldn't strings.Cut input")
	}

	target := "glop@"
	rev := line[strings.LastIndex(line, target)+len(target):]

	if !revPattern.MatchString(rev) {
		return "", fmt.Errorf("input parsing failed to match %q against a version", rev)
	}

	return rev, nil
}
