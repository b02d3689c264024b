package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"middleware-loja/middleware/ratelimit"
	"middleware-loja/middleware/ratelimit/domain"
	"middleware-loja/middleware/ratelimit/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		log.Fatalf("invalid UPSTREAM_URL: %v", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("proxy error: %v", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		)
	}

	var addrHeaders []string
	if !cfg.trustProxyHeaders {
		// sem proxy confiável na frente, header de cliente é spoofável.
		addrHeaders = []string{}
	}

	limiter := ratelimit.New(ratelimit.Options{
		Stats:               statsStore,
		SessionCookie:       cfg.sessionCookie,
		AddressHeaders:      addrHeaders,
		AddRateLimitHeaders: cfg.addHeaders,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	limiter.StartJanitor(ctx)

	h := http.Handler(proxy)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(h)
	h = limiter.Middleware(classifyStorefront)(h)
	h = ratelimit.ThroughputMiddleware(ratelimit.ThroughputOptions{
		RPS:   cfg.globalRPS,
		Burst: cfg.globalBurst,
	})(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	var adminSrv *http.Server
	if cfg.adminAddr != "" {
		adminSrv = &http.Server{
			Addr:              cfg.adminAddr,
			Handler:           adminMux(limiter),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("admin listening on %s", cfg.adminAddr)
			if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("admin server error: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if adminSrv != nil {
			_ = adminSrv.Shutdown(shutdownCtx)
		}
	}()

	log.Printf("gateway listening on %s -> %s", cfg.listenAddr, target)
	log.Printf("global ceiling: rps=%.3f burst=%d", cfg.globalRPS, cfg.globalBurst)
	log.Printf("stats: enabled=%v redisAddr=%q bucket=%q ttl=%s trackKeys=%v", cfg.statsEnabled, cfg.statsRedisAddr, cfg.statsBucket, cfg.statsTTL, cfg.statsTrackKeys)
	log.Printf("concurrency: max=%d acquireTimeout=%s", cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

// adminMux expõe a superfície administrativa: foto dos contadores e
// desbloqueio manual de endereço.
func adminMux(l *ratelimit.Limiter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(l.Stats())
	})
	mux.HandleFunc("/unblock", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		address := strings.TrimSpace(r.URL.Query().Get("address"))
		if address == "" {
			http.Error(w, "address is required", http.StatusBadRequest)
			return
		}
		removed := l.Unblock(address)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]bool{"removed": removed})
	})
	return mux
}

type config struct {
	listenAddr        string
	upstreamURL       string
	adminAddr         string
	sessionCookie     string
	trustProxyHeaders bool
	addHeaders        bool

	globalRPS   float64
	globalBurst int

	concurrencyMax     int
	concurrencyTimeout time.Duration

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackKeys     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = os.Getenv("UPSTREAM_URL")
	cfg.adminAddr = os.Getenv("ADMIN_ADDR")
	cfg.sessionCookie = getenvDefault("SESSION_COOKIE", "session_id")
	cfg.trustProxyHeaders = getenvBoolDefault("TRUST_PROXY_HEADERS", false)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", true)

	cfg.globalRPS = getenvFloatDefault("GLOBAL_RPS", 0)
	cfg.globalBurst = getenvIntDefault("GLOBAL_BURST", 0)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "loja:ratelimit:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("STATS_BUCKET", "minute")
	cfg.statsTrackKeys = getenvBoolDefault("STATS_TRACK_KEYS", false)

	if cfg.upstreamURL == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	if cfg.globalRPS < 0 {
		return config{}, errors.New("GLOBAL_RPS must be >= 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
