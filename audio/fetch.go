package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher is the fetch stage: locator to raw encoded bytes
type Fetcher struct {
	client      *http.Client
	base        *url.URL
	contentType string
	maxBytes    int64
}

// NewFetcher builds a fetcher from cfg
func NewFetcher(cfg *Config) (*Fetcher, error) {
	cfg = cfg.normalized()

	f := &Fetcher{
		client:      cfg.HTTPClient,
		contentType: cfg.ContentType,
		maxBytes:    cfg.MaxBytes,
	}
	if f.client == nil {
		f.client = http.DefaultClient
	}

	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
		}
		f.base = base
	}
	return f, nil
}

// Resolve returns the absolute locator for ref
// Scheme-less refs without a base URL stay local paths
func (f *Fetcher) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid locator %q: %v", ErrFetch, ref, err)
	}
	if u.IsAbs() {
		return u, nil
	}
	if f.base != nil {
		return f.base.ResolveReference(u), nil
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(ref)}, nil
}

// Fetch retrieves the full body behind locator
func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	u, err := f.Resolve(locator)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	case "file":
		return f.fetchFile(u)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q in %s", ErrFetch, u.Scheme, locator)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, u, err)
	}
	req.Header.Set("Content-Type", f.contentType)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, u, resp.StatusCode)
	}

	return f.readAll(u.String(), resp.Body)
}

func (f *Fetcher) fetchFile(u *url.URL) ([]byte, error) {
	path := filepath.FromSlash(u.Path)
	if u.Opaque != "" {
		// file:relative/path
		path = filepath.FromSlash(u.Opaque)
	} else if u.Host != "" && u.Host != "localhost" {
		path = filepath.FromSlash("//" + u.Host + u.Path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer file.Close()

	return f.readAll(path, file)
}

func (f *Fetcher) readAll(name string, r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFetch, name, err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, name, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s: body exceeds %d bytes", ErrFetch, name, f.maxBytes)
	}
	return data, nil
}
