package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything a UI should
// show the user before saving.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.Places.BaseURL = strings.TrimRight(strings.TrimSpace(out.Places.BaseURL), "/")
	out.Places.Language = strings.TrimSpace(out.Places.Language)
	out.Places.Region = strings.TrimSpace(out.Places.Region)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Places.BaseURL == "" {
		res.addErr("places.base_url is required")
	} else if u, err := url.Parse(out.Places.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("places.base_url is not a valid URL: %q", out.Places.BaseURL)
	}

	// The delay is the provider's rate policy, not ours; clamp silently up,
	// warn so the user knows their value was ignored.
	if out.Places.PageDelayMS < MinPageDelayMS {
		if out.Places.PageDelayMS != 0 {
			res.addWarn("places.page_delay_ms %d is below the provider minimum; using %d", out.Places.PageDelayMS, MinPageDelayMS)
		}
		out.Places.PageDelayMS = MinPageDelayMS
	}
	if out.Places.TimeoutSecs <= 0 {
		out.Places.TimeoutSecs = 20
	}
	if out.Places.ReqPerSec <= 0 {
		out.Places.ReqPerSec = 5
	}

	if out.Search.PageSize <= 0 {
		out.Search.PageSize = 20
	} else if out.Search.PageSize > 100 {
		res.addWarn("search.page_size %d is very large for a result table", out.Search.PageSize)
	}
	if out.Search.DetailWorkers <= 0 {
		out.Search.DetailWorkers = 8
	} else if out.Search.DetailWorkers > 32 {
		res.addWarn("search.detail_workers %d may trip provider rate limits", out.Search.DetailWorkers)
	}

	if out.Enrich.MaxBytes <= 0 {
		out.Enrich.MaxBytes = 512 * 1024
	}
	if out.Enrich.TimeoutSecs <= 0 {
		out.Enrich.TimeoutSecs = 15
	}

	return out, res
}
