package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scan-service/adapters/rest/middleware"
)

func TestRateLimit(t *testing.T) {
	testCases := []struct {
		desc     string
		rps      int
		requests int
	}{
		{
			desc:     "requests < rate limit",
			rps:      10,
			requests: 5,
		},
		{
			desc:     "requests > rate limit",
			rps:      5,
			requests: 10,
		},
		{
			desc:     "requests = rate limit",
			rps:      50,
			requests: 50,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			limiter := middleware.NewRateLimiter(tc.rps)

			handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			var wg sync.WaitGroup
			var reqCount atomic.Int32

			start := time.Now()
			for i := 0; i < tc.requests; i++ {
				wg.Go(func() {
					req := httptest.NewRequest(http.MethodGet, "/api/codes", nil)
					rec := httptest.NewRecorder()

					handler.ServeHTTP(rec, req)

					if rec.Code == http.StatusOK {
						reqCount.Add(1)
					}
				})
			}

			wg.Wait()

			elapsed := time.Since(start)
			successReq := reqCount.Load()
			require.Equal(t, tc.requests, int(successReq))
			actualRPS := float64(successReq) / elapsed.Seconds()
			require.LessOrEqual(t, actualRPS, float64(tc.rps)*1.3)
		})
	}
}

func TestRateLimitZeroRate(t *testing.T) {
	limiter := middleware.NewRateLimiter(0)

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	var wg sync.WaitGroup
	var successReq atomic.Int32

	// the bucket starts with one burst token, everything past it must block
	// until the request context expires
	for i := 0; i < 5; i++ {
		wg.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			req := httptest.NewRequest(http.MethodGet, "/api/codes", nil).WithContext(ctx)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code == http.StatusOK {
				successReq.Add(1)
			}
		})
	}

	wg.Wait()

	require.Equal(t, 1, int(successReq.Load()))
}
