package jenkins

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// LastBuild is the permalink alias of the most recent build.
const LastBuild = "lastBuild"

var permalinks = map[string]struct{}{
	LastBuild:               {},
	"lastSuccessfulBuild":   {},
	"lastFailedBuild":       {},
	"lastStableBuild":       {},
	"lastUnstableBuild":     {},
	"lastUnsuccessfulBuild": {},
	"lastCompletedBuild":    {},
}

// JobPath is an ordered list of folder names followed by the job name.
type JobPath []string

// ParseJobPath splits "folder/sub/job" into its segments. Empty segments are rejected.
func ParseJobPath(s string) (JobPath, error) {
	if s == "" {
		return nil, errors.New("empty job name")
	}

	parts := strings.Split(s, "/")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid job path %q: empty segment", s)
		}
	}

	return JobPath(parts), nil
}

// Name returns the leaf job name.
func (p JobPath) Name() string {
	if len(p) == 0 {
		return ""
	}

	return p[len(p)-1]
}

func (p JobPath) String() string {
	return strings.Join(p, "/")
}

// Address builds the server-relative path of sub under the job.
// Every segment is escaped on its own, so a "/" inside a name never creates a new segment.
func Address(p JobPath, sub string) string {
	var b strings.Builder

	for i, seg := range p {
		if i > 0 {
			b.WriteByte('/')
		}

		b.WriteString("job/")
		// Sub-delimiters such as "+&=:@$" are legal inside a path segment and stay as they are;
		// "/", "?", "#", "%", ";", "," and spaces are escaped.
		b.WriteString(url.PathEscape(seg))
	}

	if sub == "" {
		return b.String()
	}

	if b.Len() > 0 {
		b.WriteByte('/')
	}

	b.WriteString(sub)

	return b.String()
}

// BuildRef points at one build of a job: a positive number or a permalink such as lastBuild.
type BuildRef struct {
	Job   JobPath
	Build string
}

// ParseBuildRef validates the build designator.
func ParseBuildRef(job JobPath, build string) (BuildRef, error) {
	if _, ok := permalinks[build]; ok {
		return BuildRef{Job: job, Build: build}, nil
	}

	n, err := strconv.Atoi(build)
	if err != nil || n <= 0 {
		return BuildRef{}, fmt.Errorf("invalid build %q: want a positive number or %s", build, LastBuild)
	}

	return BuildRef{Job: job, Build: strconv.Itoa(n)}, nil
}

// Address builds the server-relative path of sub under the build.
func (r BuildRef) Address(sub string) string {
	if sub == "" {
		return Address(r.Job, r.Build)
	}

	return Address(r.Job, r.Build+"/"+sub)
}

func (r BuildRef) String() string {
	return fmt.Sprintf("%s #%s", r.Job, r.Build)
}
