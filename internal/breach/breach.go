// Package breach checks passwords against the Pwned Passwords range API
// using k-anonymity: only the first five hex characters of the SHA-1 hash
// leave the process.
package breach

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is the public range endpoint.
const DefaultURL = "https://api.pwnedpasswords.com/range/"

// Client queries a Pwned Passwords compatible range API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// IsCompromised reports whether plaintext appears in the breach corpus.
func (c *Client) IsCompromised(ctx context.Context, plaintext string) (bool, error) {
	sum := sha1.Sum([]byte(plaintext))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := hash[:5], hash[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("breach: build request: %w", err)
	}
	req.Header.Set("Add-Padding", "true")
	req.Header.Set("User-Agent", "go-users")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("breach: query range: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("breach: range API status %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		candidate, count, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !ok || !strings.EqualFold(candidate, suffix) {
			continue
		}
		// padded responses carry zero-count decoys
		return strings.TrimSpace(count) != "0", nil
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("breach: read range: %w", err)
	}
	return false, nil
}
