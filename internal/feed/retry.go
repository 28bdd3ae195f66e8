package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrFeedUnavailable sinaliza falha transitória (timeout, rede, 5xx) depois de
// esgotadas as tentativas. O ciclo de ingestão pula o feed e segue; nunca aborta.
var ErrFeedUnavailable = fmt.Errorf("feed unavailable")

// getWithRetry executa GET com timeout por tentativa e backoff exponencial.
// Respostas 4xx não são retentadas: indicam problema de requisição, não do feed.
func getWithRetry(ctx context.Context, client *http.Client, url string, retries int) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(300*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retryable, err := doGet(ctx, client, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, lastErr)
}

func doGet(ctx context.Context, client *http.Client, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("feed http %s", resp.Status)
	case resp.StatusCode >= 300:
		return nil, false, fmt.Errorf("feed http %s", resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return b, false, nil
}
