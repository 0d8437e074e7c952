package remote

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Connectivity reports whether the remote endpoint should be tried.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// Static is a fixed connectivity answer, usually taken from the OFFLINE setting.
type Static bool

func (s Static) Online(context.Context) bool { return bool(s) }

// HealthProbe asks GET /health and caches the answer for a while.
type HealthProbe struct {
	url     string
	timeout time.Duration
	ttl     time.Duration
	client  *http.Client
	now     func() time.Time

	mu      sync.Mutex
	checked time.Time
	online  bool
}

func NewHealthProbe(baseURL string, timeout, ttl time.Duration) *HealthProbe {
	return &HealthProbe{
		url:     baseURL + "/health",
		timeout: timeout,
		ttl:     ttl,
		client:  &http.Client{},
		now:     time.Now,
	}
}

func (p *HealthProbe) Online(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.checked.IsZero() && p.now().Sub(p.checked) < p.ttl {
		return p.online
	}
	p.online = p.probe(ctx)
	p.checked = p.now()
	return p.online
}

// Invalidate forces the next Online call to probe again.
func (p *HealthProbe) Invalidate() {
	p.mu.Lock()
	p.checked = time.Time{}
	p.mu.Unlock()
}

func (p *HealthProbe) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
