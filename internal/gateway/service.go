package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds every gateway HTTP call. Handlers never retry
// inside a request; the next packet retries naturally.
const DefaultRequestTimeout = 5 * time.Second

// service is the shared HTTP plumbing under UserService and InventoryService:
// a base URL, a bounded-timeout client and a liveness pinger.
type service struct {
	name    string
	baseURL string
	client  *http.Client
	pinger  *Pinger
}

func newService(name, baseURL string, timeout, pingInterval time.Duration) *service {
	s := &service{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
	s.pinger = NewPinger(name, pingInterval, s.pingOnce)
	return s
}

func (s *service) pingOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/ping", nil)
	if err != nil {
		return fmt.Errorf("building ping request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinging %s: %w", s.name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinging %s: status %d", s.name, resp.StatusCode)
	}
	return nil
}

// getJSON fetches path and decodes a 200 response into out.
// Returns found=false with nil error for 404 and for a service known to be
// down (absent, not an outage masquerading as not-found — err carries that).
func (s *service) getJSON(ctx context.Context, path string, out any) (bool, error) {
	if !s.pinger.Alive() {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("building request %s: %w", path, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.pinger.CheckNow()
		return false, fmt.Errorf("%s GET %s: %w", s.name, path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("%s GET %s: decoding response: %w", s.name, path, err)
		}
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		s.pinger.CheckNow()
		return false, fmt.Errorf("%s GET %s: status %d", s.name, path, resp.StatusCode)
	}
}

// sendJSON issues a JSON request (POST/PUT) and optionally decodes a 2xx
// response into out. Non-2xx is an error; 404 maps to found=false.
func (s *service) sendJSON(ctx context.Context, method, path string, body, out any) (bool, error) {
	if !s.pinger.Alive() {
		return false, fmt.Errorf("%s is down", s.name)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("encoding request %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("building request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.pinger.CheckNow()
		return false, fmt.Errorf("%s %s %s: %w", s.name, method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return false, fmt.Errorf("%s %s %s: decoding response: %w", s.name, method, path, err)
			}
		}
		return true, nil
	default:
		s.pinger.CheckNow()
		return false, fmt.Errorf("%s %s %s: status %d", s.name, method, path, resp.StatusCode)
	}
}

// Pinger exposes the liveness tracker so the caller can run it.
func (s *service) Pinger() *Pinger {
	return s.pinger
}
