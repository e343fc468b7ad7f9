package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

type Client struct {
	client *http.Client
	url    string
}

// NewClient creates an HTTP client with a cookie jar so that the server session persists between requests.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, fmt.Errorf("create unsafe cookie jar: %w", err)
	}
	return &Client{
		client: &http.Client{Jar: jar}, //nolint:exhaustruct // defaults are fine for tests.
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	for {
		resp, err := c.Get(ctx, urlPath)
		if err == nil {
			if err = resp.Body.Close(); err != nil {
				return fmt.Errorf("close response body: %w", err)
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, urlPath, "", nil)
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return nil, fmt.Errorf("client get: %w", err)
	}
	return parseDoc(resp)
}

// GetJSON fetches a URL and decodes the JSON response into v. The response status code is returned.
func (c *Client) GetJSON(ctx context.Context, urlPath string, v any) (int, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return 0, fmt.Errorf("client get: %w", err)
	}
	return decodeJSON(resp, v)
}

// PostJSON posts body encoded as JSON and decodes the JSON response into v. The response status code is returned.
func (c *Client) PostJSON(ctx context.Context, urlPath string, body any, v any) (int, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal body: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, urlPath, "application/json", bytes.NewReader(encoded))
	if err != nil {
		return 0, fmt.Errorf("client post: %w", err)
	}
	return decodeJSON(resp, v)
}

// PostForm posts url encoded form data and returns the response after following redirects.
func (c *Client) PostForm(ctx context.Context, urlPath string, data neturl.Values) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, urlPath, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
}

// SubmitForm submits a form in the doc identified with action formActionUrlPath and returns the response document.
//
// Hidden inputs of the form are always submitted. formFields maps label text to value. The input or select
// associated with the label is submitted with the given value.
func (c *Client) SubmitForm(
	ctx context.Context,
	doc *goquery.Document,
	formActionURLPath string,
	formFields map[string]string,
) (*goquery.Document, error) {
	form, err := FindForm(doc, formActionURLPath)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}

	formData := neturl.Values{}
	form.Find("input[type=hidden]").Each(func(_ int, s *goquery.Selection) {
		name, hasName := s.Attr("name")
		value, _ := s.Attr("value")
		if hasName {
			formData.Add(name, value)
		}
	})

	for labelText, value := range formFields {
		var input *goquery.Selection
		if input, err = FindInputForLabel(form, labelText); err != nil {
			return nil, fmt.Errorf("find input for label: %w", err)
		}
		name, exists := input.Attr("name")
		if !exists {
			return nil, fmt.Errorf("input has no name attribute (label: %s, form_action: %s)",
				labelText, formActionURLPath)
		}
		formData.Add(name, value)
	}

	resp, err := c.PostForm(ctx, formActionURLPath, formData)
	if err != nil {
		return nil, fmt.Errorf("post form: %w", err)
	}
	return parseDoc(resp)
}

func (c *Client) do(
	ctx context.Context,
	method, urlPath, contentType string,
	body io.Reader,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

func parseDoc(resp *http.Response) (*goquery.Document, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}
	doc.Url = resp.Request.URL
	return doc, nil
}

func decodeJSON(resp *http.Response, v any) (int, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	if v == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
