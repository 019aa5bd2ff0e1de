package arbre

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Request describes one fetch. Method defaults to GET; RequestHeader entries
// are merged into the outgoing request after the client defaults. Data and
// ResponseHeader are populated by FetchRequest.
type Request struct {
	URL            string
	Method         string
	Payload        []byte
	RequestHeader  http.Header
	ResponseHeader http.Header
	Data           []byte

	cancel context.CancelFunc
}

// Cancel aborts an in-flight fetch of this request. It is safe to call from
// another goroutine and after the fetch finished.
func (r *Request) Cancel() {
	if r.cancel != nil {
		r.cancel()
	}
}

// WebClient fetches documents over HTTP for parsing. It keeps cookies in an
// ExtJar so sessions can be persisted between runs.
type WebClient struct {
	client    *http.Client
	jar       *ExtJar
	userAgent string
}

func NewClient() *WebClient {
	jar := NewJar()
	return &WebClient{
		client:    &http.Client{Jar: jar},
		jar:       jar,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	}
}

func (c *WebClient) SetUserAgent(agent string) {
	c.userAgent = agent
}

// GetHTTPClient exposes the underlying client, for timeouts, transports or
// proxies.
func (c *WebClient) GetHTTPClient() *http.Client {
	return c.client
}

// LoadCookies replays cookies persisted at path into the jar.
func (c *WebClient) LoadCookies(path string) error {
	return c.jar.Load(path)
}

// PersistCookies writes the jar's cookies to path.
func (c *WebClient) PersistCookies(path string) error {
	return c.jar.Save(path)
}

func (c *WebClient) setup(r *Request) (*http.Request, context.CancelFunc, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Payload != nil {
		body = bytes.NewReader(r.Payload)
	}

	ctx, cancel := context.WithCancel(context.Background())

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("build request for %s: %w", r.URL, err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	for name, values := range r.RequestHeader {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	return req, cancel, nil
}

// FetchRequest performs r and fills in Data and ResponseHeader.
func (c *WebClient) FetchRequest(r *Request) error {
	req, cancel, err := c.setup(r)
	if err != nil {
		return err
	}

	r.cancel = cancel
	defer cancel()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", r.URL, err)
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response of %s: %w", r.URL, err)
	}

	r.Data = data
	r.ResponseHeader = resp.Header

	return nil
}

// Fetch GETs url and returns the response body.
func (c *WebClient) Fetch(url string) ([]byte, error) {
	r := Request{URL: url}

	if err := c.FetchRequest(&r); err != nil {
		return nil, err
	}

	return r.Data, nil
}

// FetchParse GETs url and parses the body leniently.
func (c *WebClient) FetchParse(url string) (*Parser, error) {
	return c.FetchParseWithOptions(url, Options{})
}

// FetchParseWithOptions GETs url and parses the body with the given options.
// A fetch error returns nil; parse diagnostics are on the returned Parser.
func (c *WebClient) FetchParseWithOptions(url string, opts Options) (*Parser, error) {
	data, err := c.Fetch(url)
	if err != nil {
		return nil, err
	}

	return NewParserWithOptions(string(data), opts), nil
}
