// Package version reports the build version and checks GitHub for newer
// releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alvarorichard/anipahe/internal/store"
	"github.com/pkg/errors"
)

const (
	Version = "1.0.0"

	GitHubOwner = "alvarorichard"
	GitHubRepo  = "anipahe"
	LatestURL   = "https://api.github.com/repos/" + GitHubOwner + "/" + GitHubRepo + "/releases/latest"
)

// String is the one-line version banner.
func String() string {
	driver := "mattn/go-sqlite3"
	if !store.IsCgoEnabled {
		driver = "modernc.org/sqlite"
	}
	return fmt.Sprintf("anipahe v%s (favorites stored with %s)", Version, driver)
}

// Release is the part of a GitHub release used here.
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// CheckForUpdates fetches the latest release from url and reports whether
// it is newer than Version.
func CheckForUpdates(ctx context.Context, client *http.Client, url string) (*Release, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "build release request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to fetch latest release")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, errors.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, false, errors.Wrap(err, "failed to decode release data")
	}
	newer, err := IsNewer(strings.TrimPrefix(release.TagName, "v"), Version)
	if err != nil {
		return nil, false, err
	}
	return &release, newer, nil
}

// IsNewer compares dotted numeric versions; missing parts count as zero.
func IsNewer(latest, current string) (bool, error) {
	lp := strings.Split(latest, ".")
	cp := strings.Split(current, ".")
	for len(lp) < len(cp) {
		lp = append(lp, "0")
	}
	for len(cp) < len(lp) {
		cp = append(cp, "0")
	}
	for i := range lp {
		l, err := strconv.Atoi(lp[i])
		if err != nil {
			return false, errors.Errorf("invalid version format in latest: %s", latest)
		}
		c, err := strconv.Atoi(cp[i])
		if err != nil {
			return false, errors.Errorf("invalid version format in current: %s", current)
		}
		if l != c {
			return l > c, nil
		}
	}
	return false, nil
}
