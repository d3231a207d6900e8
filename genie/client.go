package genie

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
)

const userAgent = "geniepipe"

// Config holds the settings of a Client.
type Config struct {
	Host         string        `errorTxt:"workspace host" mandatory:"yes"`
	Token        string        `errorTxt:"workspace personal access token" mandatory:"yes"`
	PageSize     int           // records requested per page
	Throttle     time.Duration // minimum interval between requests
	MaxRetries   int           // retries after the first attempt for 429, 5xx and transport errors
	RetryWait    time.Duration // initial backoff interval
	RetryMaxWait time.Duration // cap on the backoff interval
	Timeout      time.Duration // per request timeout
}

// NewDefaultConfig returns a Config for host and token with default paging, throttling and retries.
func NewDefaultConfig(host string, token string) Config {
	return Config{
		Host:         host,
		Token:        token,
		PageSize:     constants.GeniePageSizeDefault,
		Throttle:     constants.GenieThrottleMillisDefault * time.Millisecond,
		MaxRetries:   constants.GenieMaxRetriesDefault,
		RetryWait:    constants.GenieRetryWaitMillis * time.Millisecond,
		RetryMaxWait: constants.GenieRetryMaxWaitSeconds * time.Second,
		Timeout:      constants.GenieRequestTimeoutSeconds * time.Second,
	}
}

// Client calls the Databricks workspace REST API.
// It implements Lister, UserDirectory and FileUploader.
type Client struct {
	http     *resty.Client
	cfg      Config
	log      logger.Logger
	throttle *Throttle
	onPage   PageHandler
}

var (
	_ Lister        = (*Client)(nil)
	_ UserDirectory = (*Client)(nil)
	_ FileUploader  = (*Client)(nil)
)

// NewClient returns a Client for the workspace in cfg.
func NewClient(log logger.Logger, cfg Config) (*Client, error) {
	if cfg.Host == "" || cfg.Token == "" {
		return nil, errors.New("a workspace host and token are required")
	}
	if _, err := url.Parse(cfg.Host); err != nil {
		return nil, errors.Wrap(err, "bad workspace host")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = constants.GeniePageSizeDefault
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = constants.GenieRetryWaitMillis * time.Millisecond
	}
	if cfg.RetryMaxWait < cfg.RetryWait {
		cfg.RetryMaxWait = cfg.RetryWait
	}
	h := resty.New().
		SetBaseURL(cfg.Host).
		SetAuthToken(cfg.Token).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		h.SetTimeout(cfg.Timeout)
	}
	return &Client{
		http:     h,
		cfg:      cfg,
		log:      log,
		throttle: NewThrottle(cfg.Throttle),
	}, nil
}

// SetPageHandler registers h to be called with the raw body of every page fetched by pagers created afterwards.
func (c *Client) SetPageHandler(h PageHandler) {
	c.onPage = h
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.cfg.RetryWait
	eb.MaxInterval = c.cfg.RetryMaxWait
	eb.MaxElapsedTime = 0 // limited by the number of retries instead.
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.cfg.MaxRetries)), ctx)
}

// do sends a request built by newReq, honouring the throttle and retrying 429, 5xx and transport errors.
func (c *Client) do(ctx context.Context, method string, path string, newReq func() (*resty.Request, error)) ([]byte, error) {
	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		if err := c.throttle.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := newReq()
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := req.SetContext(ctx).Execute(method, path)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.log.Warn("request ", method, " ", path, " failed on attempt ", attempt, ": ", err)
			return errors.Wrapf(err, "error calling %v %v", method, path)
		}
		if resp.IsError() {
			apiErr := &APIError{StatusCode: resp.StatusCode(), Method: method, Path: path, Body: resp.String()}
			if apiErr.Retryable() {
				c.log.Warn("request ", method, " ", path, " returned status ", resp.StatusCode(), " on attempt ", attempt)
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		body = resp.Body()
		return nil
	}
	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		return nil, err
	}
	c.log.Trace("request ", method, " ", path, " succeeded after ", attempt, " attempt(s)")
	return body, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, func() (*resty.Request, error) {
		return c.http.R().SetQueryParamsFromValues(query), nil
	})
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body io.ReadSeeker) error {
	_, err := c.do(ctx, http.MethodPut, path, func() (*resty.Request, error) {
		if _, err := body.Seek(0, io.SeekStart); err != nil { // rewind for retries.
			return nil, errors.Wrap(err, "unable to rewind request body")
		}
		return c.http.R().
			SetQueryParamsFromValues(query).
			SetHeader("Content-Type", "application/octet-stream").
			SetBody(body), nil
	})
	return err
}
