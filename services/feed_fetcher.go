package services

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// SyncFetchError là lỗi khi tải calendar từ nguồn bên ngoài
type SyncFetchError struct {
	StatusCode int
	Message    string
}

func (e *SyncFetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("sync fetch failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("sync fetch failed: %s", e.Message)
}

var feedClient = &http.Client{
	Timeout: 30 * time.Second,
}

// FetchCalendar tải nội dung calendar từ url. Không retry: sync thất bại
// được ghi lại trên source và chờ chu kỳ kế tiếp.
func FetchCalendar(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", &SyncFetchError{Message: err.Error()}
	}
	req.Header.Set("User-Agent", "staycal-calendar-sync/1.0")

	resp, err := feedClient.Do(req)
	if err != nil {
		return "", &SyncFetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SyncFetchError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status code from %s", url),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SyncFetchError{Message: err.Error()}
	}

	return string(body), nil
}
