package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfigNormalizes(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-2")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "3s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_ENABLED", "off")

	cfg := LoadRateLimitConfig()
	if cfg.Enabled {
		t.Fatal("expected disabled")
	}
	if cfg.Capacity != 1 || cfg.RefillTokens != 1 {
		t.Fatalf("capacity=%d refill=%d", cfg.Capacity, cfg.RefillTokens)
	}
	if cfg.TTL != 15*time.Second {
		t.Fatalf("ttl = %s", cfg.TTL)
	}
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "bogus")
	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || len(cfg.Methods) != 2 {
		t.Fatalf("methods = %v", cfg.Methods)
	}
	if cfg.TTL != 30*time.Second || cfg.Prefix != "ttr:cache" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TLS", "1")
	cfg := LoadRedisConfig()
	if cfg.Addr != "cache:6380" || cfg.DB != 3 || !cfg.TLS {
		t.Fatalf("cfg = %+v", cfg)
	}
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	if got := LoadRedisConfig().Addr; got != "redis:6379" {
		t.Fatalf("addr = %s", got)
	}
}

func TestAMQPURLPrecedence(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://b/")
	if got := amqpURL(); got != "amqp://b/" {
		t.Fatalf("got %s", got)
	}
	t.Setenv("RABBITMQ_URL", "amqp://a/")
	if got := amqpURL(); got != "amqp://a/" {
		t.Fatalf("got %s", got)
	}
}
