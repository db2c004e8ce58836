package hymnpdf

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultLivenessTimeout bounds the content source check.
const DefaultLivenessTimeout = 5 * time.Second

// CheckSource sends a HEAD request to baseURL and requires a 2xx answer.
// It runs before anything touches the output directory. A nil client uses
// http.DefaultClient; timeout <= 0 uses DefaultLivenessTimeout.
func CheckSource(ctx context.Context, client *http.Client, baseURL string, timeout time.Duration) error {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultLivenessTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s answered %s", ErrSourceUnreachable, baseURL, resp.Status)
	}
	return nil
}
