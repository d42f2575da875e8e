package config

import (
	"context"
	"crypto/tls"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 2 * time.Second

// NewRedisClient connects to the Redis instance backing rate limiting and
// the response cache. REDIS_URL is honored first (redis:// or rediss://);
// otherwise the address is assembled from REDIS_HOST/REDIS_PORT or
// REDIS_ADDR, with REDIS_PASSWORD, REDIS_DB and REDIS_TLS as optional
// extras. Returns nil when the server cannot be reached, in which case both
// middlewares degrade to no-ops rather than failing startup.
func NewRedisClient() *redis.Client {
	opts, err := redisOptions()
	if err != nil {
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

func redisOptions() (*redis.Options, error) {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return redis.ParseURL(url)
	}

	addr := getenv("REDIS_ADDR", "localhost:6379")
	if host := os.Getenv("REDIS_HOST"); host != "" {
		addr = net.JoinHostPort(host, getenv("REDIS_PORT", "6379"))
	}

	db, _ := strconv.Atoi(getenv("REDIS_DB", "0"))

	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); v == "1" || strings.EqualFold(v, "true") {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}

	return &redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        db,
		TLSConfig: tlsConf,
	}, nil
}
