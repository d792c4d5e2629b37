package canvas

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"course-catalog/internal/httpx"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
	Log     *slog.Logger
}

func New(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	retry := httpx.DefaultRetryConfig()
	retry.Logger = logger
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
		Retry:   retry,
		Log:     logger,
	}
}

// ListOptions mirrors the query parameters of GET /api/v1/courses.
type ListOptions struct {
	PerPage  int
	MaxPages int // <=0 means all
	Include  []string
	States   []string
}

func (c *Client) coursesURL(opts ListOptions) (string, error) {
	u, err := url.Parse(c.BaseURL + "/api/v1/courses")
	if err != nil {
		return "", fmt.Errorf("canvas: invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("canvas: invalid base url %q", c.BaseURL)
	}

	q := u.Query()
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	q.Set("per_page", strconv.Itoa(perPage))
	for _, inc := range opts.Include {
		q.Add("include[]", inc)
	}
	for _, st := range opts.States {
		q.Add("state[]", st)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ListCourses walks every page of the courses endpoint following the Link
// header. On failure the pages collected so far are returned with the error.
func (c *Client) ListCourses(ctx context.Context, opts ListOptions) ([]Course, error) {
	next, err := c.coursesURL(opts)
	if err != nil {
		return nil, err
	}

	var all []Course
	for page := 1; next != ""; page++ {
		if opts.MaxPages > 0 && page > opts.MaxPages {
			c.Log.Info("canvas page limit reached", "max_pages", opts.MaxPages)
			break
		}

		var batch []Course
		pageURL := next
		h, err := httpx.DoJSON(ctx, c.HTTP, c.request(pageURL), &batch, c.Retry)
		if err != nil {
			return all, fmt.Errorf("canvas: list courses page=%d: %w", page, err)
		}

		c.Log.Debug("canvas page", "page", page, "results", len(batch))
		all = append(all, batch...)
		next = httpx.NextLink(h)
	}

	return all, nil
}

func (c *Client) request(pageURL string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("canvas: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.Token)
		return req, nil
	}
}
