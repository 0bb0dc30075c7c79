// Package enrich scrapes a candidate's website for additional contact
// channels (emails, phones, social profiles). Failures are always soft; the
// candidate keeps whatever the places lookup already returned.
package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

type SiteContacts struct {
	Domain  string            `json:"domain"`
	Emails  []string          `json:"emails"`
	Phones  []string          `json:"phones"`
	Socials map[string]string `json:"socials"`
}

type Limiter interface {
	WaitURL(ctx context.Context, raw string) error
}

type Enricher struct {
	hc       *http.Client
	limiter  Limiter
	maxBytes int
	cache    *Cache
}

func New(timeout time.Duration, maxBytes int, limiter Limiter, cache *Cache) *Enricher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 512 * 1024
	}
	return &Enricher{
		hc:       &http.Client{Timeout: timeout},
		limiter:  limiter,
		maxBytes: maxBytes,
		cache:    cache,
	}
}

var socialHosts = map[string]string{
	"facebook.com":  "facebook",
	"instagram.com": "instagram",
	"linkedin.com":  "linkedin",
	"x.com":         "x",
	"twitter.com":   "x",
	"youtube.com":   "youtube",
}

// Site fetches and scans one website, serving from the cache when the domain
// was scanned before.
func (e *Enricher) Site(ctx context.Context, website string) (SiteContacts, error) {
	dom := domainOf(website)
	if dom == "" {
		return SiteContacts{}, fmt.Errorf("enrich: bad website url %q", website)
	}

	if e.cache != nil {
		if sc, ok, err := e.cache.Get(ctx, dom); err == nil && ok {
			return sc, nil
		}
	}

	sc, err := e.scan(ctx, website, dom)
	if err != nil {
		return SiteContacts{}, err
	}

	if e.cache != nil {
		_ = e.cache.Put(ctx, sc)
	}
	return sc, nil
}

func (e *Enricher) scan(ctx context.Context, website, dom string) (SiteContacts, error) {
	if e.limiter != nil {
		if err := e.limiter.WaitURL(ctx, website); err != nil {
			return SiteContacts{}, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	req.Header.Set("User-Agent", "LeadScout/1.0 (+local)")

	res, err := e.hc.Do(req)
	if err != nil {
		return SiteContacts{}, fmt.Errorf("enrich: get %s: %w", dom, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return SiteContacts{}, fmt.Errorf("enrich: %s status %d", dom, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, int64(e.maxBytes)))
	if err != nil {
		return SiteContacts{}, fmt.Errorf("enrich: parse %s: %w", dom, err)
	}

	sc := SiteContacts{Domain: dom, Socials: map[string]string{}}
	emails := map[string]bool{}
	phones := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)

		switch {
		case strings.HasPrefix(strings.ToLower(href), "mailto:"):
			addr := cleanMailto(href)
			if addr != "" {
				emails[addr] = true
			}
		case strings.HasPrefix(strings.ToLower(href), "tel:"):
			num := strings.TrimSpace(strings.TrimPrefix(href[4:], "//"))
			if num != "" {
				phones[num] = true
			}
		default:
			if name, profile := socialProfile(href); name != "" {
				if _, seen := sc.Socials[name]; !seen {
					sc.Socials[name] = profile
				}
			}
		}
	})

	sc.Emails = sortedKeys(emails)
	sc.Phones = sortedKeys(phones)
	return sc, nil
}

func cleanMailto(href string) string {
	addr := href[len("mailto:"):]
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	addr = strings.TrimSpace(addr)
	if !strings.Contains(addr, "@") {
		return ""
	}
	return strings.ToLower(addr)
}

func socialProfile(href string) (name, profile string) {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return "", ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if n, ok := socialHosts[host]; ok && u.Path != "" && u.Path != "/" {
		return n, u.String()
	}
	return "", ""
}

func domainOf(website string) string {
	u, err := url.Parse(strings.TrimSpace(website))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
