package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformedRepoURL is wrapped by ParseRepoURL failures.
var ErrMalformedRepoURL = errors.New("malformed repository url")

// RepoLocation addresses a path inside a hosted repository branch.
type RepoLocation struct {
	RepoURL string
	User    string
	Repo    string
	Branch  string
	Path    string
}

// ParseRepoURL splits https://host/<user>/<repo>/<branch>/<path...>. The
// path may be empty; user, repo and branch are required.
func ParseRepoURL(raw string) (RepoLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return RepoLocation{}, fmt.Errorf("%w: %v", ErrMalformedRepoURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return RepoLocation{}, fmt.Errorf("%w: scheme %q in %s", ErrMalformedRepoURL, u.Scheme, raw)
	}
	if u.Host == "" {
		return RepoLocation{}, fmt.Errorf("%w: missing host in %s", ErrMalformedRepoURL, raw)
	}
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) < 3 {
		return RepoLocation{}, fmt.Errorf("%w: want /<user>/<repo>/<branch>[/path], got %d segment(s) in %s", ErrMalformedRepoURL, len(segs), raw)
	}
	return RepoLocation{
		RepoURL: u.Scheme + "://" + u.Host + "/" + segs[0] + "/" + segs[1],
		User:    segs[0],
		Repo:    segs[1],
		Branch:  segs[2],
		Path:    strings.Join(segs[3:], "/"),
	}, nil
}
