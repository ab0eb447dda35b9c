package reactive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// StatusError is delivered by FetchJSON for non-2xx responses
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// FetchJSON issues a GET request per subscription and emits the decoded
// body. Unsubscribing cancels the request. A nil client means http.DefaultClient.
func FetchJSON[T any](client *http.Client, url string, opts ...Option) Observable[T] {
	if client == nil {
		client = http.DefaultClient
	}
	return FromFunc(func(ctx context.Context) (T, error) {
		var out T
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return out, err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return out, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return out, &StatusError{URL: url, StatusCode: resp.StatusCode}
		}
		err = json.NewDecoder(resp.Body).Decode(&out)
		return out, err
	}, opts...)
}
