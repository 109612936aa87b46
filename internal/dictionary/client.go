// Package dictionary looks words up in the public Free Dictionary API.
package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultEndpoint = "https://api.dictionaryapi.dev/api/v2/entries/en"
	DefaultTimeout  = 30 * time.Second
)

// Client checks words against a dictionary endpoint of the form
// {endpoint}/{word}.
type Client struct {
	endpoint string
	doer     Doer
	logger   logrus.FieldLogger
}

func NewClient(endpoint string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewClientWithDoer(endpoint, &http.Client{Timeout: timeout}, logger)
}

// NewClientWithDoer builds a Client around an arbitrary HTTP implementation.
func NewClientWithDoer(endpoint string, doer Doer, logger logrus.FieldLogger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		doer:     doer,
		logger:   logger,
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// lookupURL appends the word as the last path segment without escaping it.
func (c *Client) lookupURL(word string) string {
	return c.endpoint + "/" + word
}

// CheckWord issues exactly one GET for word and classifies the response.
// Failures are logged and reported as OutcomeError; they are never returned
// as errors.
func (c *Client) CheckWord(ctx context.Context, word string) Result {
	res := Result{Word: word}

	reqURL := c.lookupURL(word)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return c.fail(res, fmt.Sprintf("failed to create request: %v", err))
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.WithField("url", reqURL).Debug("looking up word")

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled by the caller: no diagnostic.
			res.Outcome = OutcomeError
			res.Reason = fmt.Sprintf("request cancelled: %v", ctx.Err())
			return res
		}
		return c.fail(res, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		res.Outcome = OutcomeUndefined
		return res
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return c.fail(res, fmt.Sprintf("API returned status %s", statusLine(resp)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(res, fmt.Sprintf("failed to read response: %v", err))
	}

	entries, isArray, err := decodeEntries(body)
	if err != nil {
		return c.fail(res, fmt.Sprintf("failed to decode response: %v", err))
	}
	if !isArray {
		c.logger.WithField("word", word).Debug("response is not an array")
		res.Outcome = OutcomeUndefined
		return res
	}

	res.Entries = len(entries)
	if res.Entries == 0 {
		res.Outcome = OutcomeUndefined
		return res
	}

	res.Outcome = OutcomeDefined
	c.logger.WithFields(logrus.Fields{
		"word":     word,
		"entries":  res.Entries,
		"headword": entries[0].Word,
	}).Debug("definition found")
	return res
}

func (c *Client) fail(res Result, reason string) Result {
	res.Outcome = OutcomeError
	res.Reason = reason

	fields := logrus.Fields{"word": res.Word, "reason": reason}
	if res.Status != 0 {
		fields["status"] = res.Status
	}
	c.logger.WithFields(fields).Warn("dictionary lookup failed")
	return res
}

// decodeEntries checks that body is JSON and, when it is an array, decodes
// its elements. Elements that are not entry objects still count towards the
// length; only the shape of the outer value matters.
func decodeEntries(body []byte) ([]Entry, bool, error) {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false, err
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, false, nil
	}

	entries := make([]Entry, len(items))
	var typed []Entry
	if err := json.Unmarshal(body, &typed); err == nil {
		copy(entries, typed)
	}
	return entries, true, nil
}

func statusLine(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
