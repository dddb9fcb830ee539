// Package courtapi is the client for the rate-limited, paginated court
// records API. Every outbound request waits on a shared limiter so the
// provider's minimum inter-request delay is honored regardless of which
// sync routine is driving the client.
package courtapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const defaultPageSize = 50

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a client enforcing minDelay between requests
// (token-bucket of one).
func NewClient(baseURL, token string, minDelay, timeout time.Duration) *Client {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(minDelay), 1),
	}
}

// OpinionQuery bounds a paginated opinion fetch.
type OpinionQuery struct {
	Jurisdiction string
	FiledAfter   time.Time
	PageSize     int
	MaxRecords   int
}

// JudgeQuery bounds a paginated judge fetch.
type JudgeQuery struct {
	Jurisdiction string
	PageSize     int
	MaxRecords   int
}

// FetchOpinions pages through /opinions/ until the provider reports no next
// page or MaxRecords is reached. A failed page fetch fails the whole call;
// partial results are discarded by the caller and the queue retry policy
// replays from scratch.
func (c *Client) FetchOpinions(ctx context.Context, q OpinionQuery) ([]Opinion, error) {
	params := url.Values{}
	params.Set("order_by", "-date_filed")
	params.Set("page_size", strconv.Itoa(pageSizeOr(q.PageSize)))
	if q.Jurisdiction != "" {
		params.Set("court", q.Jurisdiction)
	}
	if !q.FiledAfter.IsZero() {
		params.Set("date_filed__gte", q.FiledAfter.Format("2006-01-02"))
	}

	var opinions []Opinion
	err := c.paginate(ctx, c.baseURL+"/opinions/?"+params.Encode(), q.MaxRecords, func(raw json.RawMessage) error {
		var rec opinionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode opinion record: %w", err)
		}
		opinions = append(opinions, translateOpinion(rec))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return opinions, nil
}

// FetchJudges pages through /people/.
func (c *Client) FetchJudges(ctx context.Context, q JudgeQuery) ([]Judge, error) {
	params := url.Values{}
	params.Set("page_size", strconv.Itoa(pageSizeOr(q.PageSize)))
	if q.Jurisdiction != "" {
		params.Set("positions__court", q.Jurisdiction)
	}

	var judges []Judge
	err := c.paginate(ctx, c.baseURL+"/people/?"+params.Encode(), q.MaxRecords, func(raw json.RawMessage) error {
		var rec personRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode person record: %w", err)
		}
		judges = append(judges, translatePerson(rec))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return judges, nil
}

// FetchDocket retrieves a single docket by external id.
func (c *Client) FetchDocket(ctx context.Context, id int) (*Docket, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/dockets/%d/", c.baseURL, id))
	if err != nil {
		return nil, err
	}

	var rec docketRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode docket record: %w", err)
	}
	docket := translateDocket(rec)
	return &docket, nil
}

// paginate walks a cursor-paginated listing, invoking each for every raw
// result until the cursor ends or cap records have been consumed.
func (c *Client) paginate(ctx context.Context, startURL string, maxRecords int, each func(json.RawMessage) error) error {
	next := startURL
	seen := 0

	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return err
		}

		var page pageEnvelope
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("decode page: %w", err)
		}

		for _, raw := range page.Results {
			if maxRecords > 0 && seen >= maxRecords {
				logrus.WithFields(logrus.Fields{"cap": maxRecords, "url": startURL}).
					Debug("record cap reached, stopping pagination")
				return nil
			}
			if err := each(raw); err != nil {
				return err
			}
			seen++
		}

		if page.Next == nil {
			return nil
		}
		next = *page.Next
	}
	return nil
}

// get performs one rate-limited request. Any non-2xx status is a hard
// failure for the fetch.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("court api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("court api returned status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func pageSizeOr(n int) int {
	if n <= 0 {
		return defaultPageSize
	}
	return n
}
