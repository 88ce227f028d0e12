package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

type request struct {
	method string
	path   string
	body   string
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	gen, err := generatorForProfile(cfg.Profile, cfg.Seed)
	if err != nil {
		return Result{}, err
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	client := &http.Client{Timeout: 5 * time.Second}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx atomic.Int64
	jobs := make(chan request, cfg.Concurrency*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				var body *strings.Reader
				if job.body != "" {
					body = strings.NewReader(job.body)
				}
				req, err := newRequest(ctx, job.method, baseURL+job.path, body)
				if err != nil {
					failures.Add(1)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					failures.Add(1)
					continue
				}
				_ = resp.Body.Close()
				total.Add(1)
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					s2xx.Add(1)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					s4xx.Add(1)
				case resp.StatusCode >= 500:
					s5xx.Add(1)
				}
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Result{
				TotalRequests: total.Load(),
				Failures:      failures.Load(),
				Status2xx:     s2xx.Load(),
				Status4xx:     s4xx.Load(),
				Status5xx:     s5xx.Load(),
			}, nil
		case <-ticker.C:
			select {
			case jobs <- gen():
			case <-ctx.Done():
			}
		}
	}
}

func newRequest(ctx context.Context, method, url string, body *strings.Reader) (*http.Request, error) {
	if body == nil {
		return http.NewRequestWithContext(ctx, method, url, nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// generatorForProfile returns a request source. Login requests reuse a small
// pool of identities so most of them touch an existing user.
func generatorForProfile(profile string, seed int64) (func() request, error) {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1))
	var mu sync.Mutex
	intN := func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rng.IntN(n)
	}
	login := func() request {
		n := intN(50)
		return request{
			method: http.MethodPost,
			path:   "/api/v1/users/login",
			body:   fmt.Sprintf(`{"external_id":"loadgen-%d","email":"loadgen-%d@example.com"}`, n, n),
		}
	}
	reads := []request{
		{method: http.MethodGet, path: "/api/v1/roles"},
		{method: http.MethodGet, path: "/api/v1/users?page=1&page_size=20"},
		{method: http.MethodGet, path: "/api/v1/roles/1/users"},
		{method: http.MethodGet, path: "/health/ready"},
	}
	errorsOnly := []request{
		{method: http.MethodGet, path: "/api/v1/users/999999"},
		{method: http.MethodGet, path: "/api/v1/users/not-a-number"},
		{method: http.MethodPost, path: "/api/v1/roles", body: `{"name":"Admin"}`},
		{method: http.MethodPut, path: "/api/v1/users/999999/roles/1"},
		{method: http.MethodGet, path: "/api/v1/unknown"},
	}
	pick := func(pool []request) request { return pool[intN(len(pool))] }

	switch strings.ToLower(profile) {
	case "read":
		return func() request { return pick(reads) }, nil
	case "", "mixed":
		return func() request {
			switch r := intN(10); {
			case r < 2:
				return login()
			case r < 3:
				return request{method: http.MethodGet, path: "/"}
			case r < 4:
				return pick(errorsOnly)
			default:
				return pick(reads)
			}
		}, nil
	case "error-heavy":
		return func() request { return pick(errorsOnly) }, nil
	default:
		return nil, fmt.Errorf("unknown profile: %s", profile)
	}
}
