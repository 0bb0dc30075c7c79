package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

type ClientConfig struct {
	BaseURL  string
	Language string
	Region   string
	Timeout  time.Duration
	// APIKey is called per request so key rotation via the keyring does not
	// require a restart.
	APIKey func() (string, error)
}

// Client is the HTTP implementation of Provider against a Google-Places
// shaped API (textsearch/details endpoints, status strings, page tokens).
type Client struct {
	cfg     ClientConfig
	hc      *http.Client
	limiter *HostLimiter

	readyMu sync.Mutex
	ready   bool
}

func NewClient(cfg ClientConfig, limiter *HostLimiter) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// Ready is the explicit awaitable bootstrap: verify the endpoint parses and a
// key is present. Only success is memoized; a missing key is transient (the
// user can store one at any time via the secrets endpoint), so the probe runs
// again on the next search until it passes.
func (c *Client) Ready(ctx context.Context) error {
	c.readyMu.Lock()
	defer c.readyMu.Unlock()
	if c.ready {
		return nil
	}

	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("places: bad base url %q", c.cfg.BaseURL)
	}
	if c.cfg.APIKey == nil {
		return errors.New("places: no API key source configured")
	}
	key, err := c.cfg.APIKey()
	if err != nil || key == "" {
		return errors.New("places: API key not set (store it via the secrets endpoint)")
	}

	c.ready = true
	return nil
}

type searchResponse struct {
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message"`
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       Place  `json:"result"`
}

func (c *Client) TextSearch(ctx context.Context, query string) (Page, error) {
	q := url.Values{}
	q.Set("query", query)
	if c.cfg.Language != "" {
		q.Set("language", c.cfg.Language)
	}
	if c.cfg.Region != "" {
		q.Set("region", c.cfg.Region)
	}
	return c.searchPage(ctx, q)
}

func (c *Client) NextPage(ctx context.Context, token string) (Page, error) {
	q := url.Values{}
	q.Set("pagetoken", token)
	return c.searchPage(ctx, q)
}

func (c *Client) searchPage(ctx context.Context, q url.Values) (Page, error) {
	var sr searchResponse
	if err := c.get(ctx, "/textsearch/json", q, &sr); err != nil {
		return Page{}, err
	}

	switch sr.Status {
	case StatusOK:
		return Page{Places: sr.Results, NextToken: sr.NextPageToken}, nil
	case StatusZeroResults:
		// empty success, not a failure
		return Page{}, nil
	default:
		return Page{}, &StatusError{Status: sr.Status, Message: sr.ErrorMessage}
	}
}

func (c *Client) Details(ctx context.Context, placeID string) (Place, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "place_id,name,formatted_address,formatted_phone_number,website")
	if c.cfg.Language != "" {
		q.Set("language", c.cfg.Language)
	}

	var dr detailsResponse
	if err := c.get(ctx, "/details/json", q, &dr); err != nil {
		return Place{}, err
	}
	if dr.Status != StatusOK {
		return Place{}, &StatusError{Status: dr.Status, Message: dr.ErrorMessage}
	}
	return dr.Result, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	key, err := c.cfg.APIKey()
	if err != nil {
		return fmt.Errorf("places: api key: %w", err)
	}
	q.Set("key", key)

	reqURL := c.cfg.BaseURL + path + "?" + q.Encode()

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, reqURL); err != nil {
			return err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	req.Header.Set("User-Agent", "LeadScout/1.0 (+local)")

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("places: get %s: %w", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("places: %s status %d", path, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("places: decode %s: %w", path, err)
	}
	return nil
}
