package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/flows"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
)

// RemoteFile is a downloaded input.
type RemoteFile struct {
	Name string
	Data []byte
}

// Download fetches rawURL. The file name comes from the Content-Disposition
// header (filename* before filename) or the final URL path, reduced to its
// last element.
func Download(ctx context.Context, client *http.Client, rawURL string) (RemoteFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return RemoteFile{}, retry.Permanent(fmt.Errorf("build request for %s: %w", rawURL, err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return RemoteFile{}, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return RemoteFile{}, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return RemoteFile{}, fmt.Errorf("read %s: %w", rawURL, err)
	}

	name := responseFilename(resp)
	if name == "" {
		return RemoteFile{}, retry.Permanent(fmt.Errorf("%w: %s", ErrNoFilename, rawURL))
	}
	return RemoteFile{Name: name, Data: data}, nil
}

func responseFilename(resp *http.Response) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := baseName(params["filename"]); name != "" {
				return name
			}
		}
	}
	if resp.Request != nil && resp.Request.URL != nil {
		return baseName(resp.Request.URL.Path)
	}
	return ""
}

// baseName keeps only the last path element so a remote name can never
// escape its family directory.
func baseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.TrimRight(name, "/") == "" {
		return ""
	}
	switch base := path.Base(name); base {
	case ".", "..", "/":
		return ""
	default:
		return base
	}
}

// Upload PUTs a document to target with its mime type as Content-Type.
// Target headers override the defaults.
func Upload(ctx context.Context, client *http.Client, target flows.OutputTarget, doc documents.Document) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, bytes.NewReader(doc.Content()))
	if err != nil {
		return retry.Permanent(fmt.Errorf("build upload request for %s: %w", doc.Name(), err))
	}
	req.Header.Set("Content-Type", doc.MimeType())
	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("PUT %s: %w", doc.Name(), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return checkStatus(resp)
}

func postJSON(ctx context.Context, client *http.Client, url string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal webhook payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("build webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return checkStatus(resp)
}

// checkStatus rejects non-2xx responses. Client errors other than timeouts
// and rate limits are permanent.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	err := fmt.Errorf("%w: %s %s: %s", ErrHTTPStatus, resp.Request.Method, resp.Request.URL, resp.Status)
	switch {
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return err
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return retry.Permanent(err)
	default:
		return err
	}
}
