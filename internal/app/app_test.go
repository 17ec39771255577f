package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/config"
	healthcheck "github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/redis"
	"github.com/vladislavdragonenkov/shop/internal/version"
)

func findFreePort(t *testing.T) int {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer lis.Close()

	return lis.Addr().(*net.TCPAddr).Port
}

func TestStartMetricsServer_Endpoints(t *testing.T) {
	logger := log.WithField("test", "http")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buildVersion, _, _ := version.Info()
	healthHandler := healthcheck.NewHandler(buildVersion)
	srv := startMetricsServer(ctx, addr, logger, healthHandler)
	defer shutdownHTTP(srv, logger)

	// Даём время на запуск
	time.Sleep(100 * time.Millisecond)

	base := fmt.Sprintf("http://%s", addr)

	resp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("failed to get /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 for /metrics, got %d", resp.StatusCode)
	}
	if len(body) == 0 {
		t.Error("/metrics should return non-empty response")
	}

	for _, path := range []string{"/healthz", "/livez", "/readyz"} {
		resp, err := http.Get(base + path)
		if err != nil {
			t.Fatalf("failed to get %s: %v", path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200 for %s, got %d", path, resp.StatusCode)
		}
	}
}

func TestInitRateLimiter_NoRedisFallsBackToLocal(t *testing.T) {
	logger := log.WithField("test", "rate-limiter")

	limiter, client := initRateLimiter(config.Config{}, logger)
	if client != nil {
		t.Error("expected nil redis client without address")
	}
	if _, ok := limiter.(*redis.LocalLimiter); !ok {
		t.Errorf("expected local limiter fallback, got %T", limiter)
	}
}

func TestInitRateLimiter_UnreachableRedisFallsBackToLocal(t *testing.T) {
	logger := log.WithField("test", "rate-limiter")

	limiter, client := initRateLimiter(config.Config{RedisAddr: "127.0.0.1:1"}, logger)
	if client != nil {
		t.Error("expected nil redis client for unreachable address")
	}
	if _, ok := limiter.(*redis.LocalLimiter); !ok {
		t.Errorf("expected local limiter fallback, got %T", limiter)
	}
}
