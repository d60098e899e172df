package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when the asset extension is not a glTF encoding.
	ErrUnsupportedFormat = errors.New("unsupported model format")

	// ErrFetch wraps failures to retrieve the asset or one of its external resources.
	ErrFetch = errors.New("fetch failed")
)

// source is a fetched asset plus the means to resolve URIs relative to it.
type source struct {
	name  string
	data  []byte
	isGLB bool
	fetch resourceFetcher
}

// sourceFormat returns whether the location names a GLB container, or ErrUnsupportedFormat.
func sourceFormat(location string) (bool, error) {
	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".glb":
		return true, nil
	case ".gltf":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// openSource reads the asset at location, which may be a filesystem path, a file:// URL or an http(s):// URL.
func openSource(ctx context.Context, client *http.Client, location string) (source, error) {
	isGLB, err := sourceFormat(location)
	if err != nil {
		return source{}, err
	}

	u, err := url.Parse(location)
	// Single-letter schemes are Windows drive letters, not URLs.
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return openFile(location, isGLB)
	}

	switch u.Scheme {
	case "file":
		return openFile(filepath.FromSlash(u.Path), isGLB)
	case "http", "https":
		data, err := httpGet(ctx, client, u.String())
		if err != nil {
			return source{}, err
		}
		return source{
			name:  path.Base(u.Path),
			data:  data,
			isGLB: isGLB,
			fetch: func(ctx context.Context, uri string) ([]byte, error) {
				ref, err := url.Parse(uri)
				if err != nil {
					return nil, fmt.Errorf("%w: %q: %v", ErrFetch, uri, err)
				}
				return httpGet(ctx, client, u.ResolveReference(ref).String())
			},
		}, nil
	default:
		return source{}, fmt.Errorf("%w: unsupported scheme %q", ErrFetch, u.Scheme)
	}
}

func openFile(p string, isGLB bool) (source, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return source{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	dir := filepath.Dir(p)
	return source{
		name:  filepath.Base(p),
		data:  data,
		isGLB: isGLB,
		fetch: func(_ context.Context, uri string) ([]byte, error) {
			rel, err := url.PathUnescape(uri)
			if err != nil {
				rel = uri
			}
			b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFetch, err)
			}
			return b, nil
		},
	}, nil
}

func httpGet(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: %s", ErrFetch, rawURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrFetch, rawURL, err)
	}
	return data, nil
}
