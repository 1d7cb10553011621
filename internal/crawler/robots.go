package crawler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsAllowed reports whether userAgent may crawl targetURL according to
// the site's robots.txt. A missing or unreadable robots.txt counts as
// permission: the check only refuses when the site explicitly disallows
// the listing path.
func RobotsAllowed(ctx context.Context, client *http.Client, targetURL, userAgent string) bool {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	robotsURL := parsed.Scheme + "://" + parsed.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return true
	}

	return data.FindGroup(userAgent).Test(parsed.Path)
}
