package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"porkbun_console/internal/porkbun"
)

// ErrMiss is returned when no cached domain list exists for a profile.
var ErrMiss = fmt.Errorf("domain list cache miss")

func domainsKey(profileID string) string {
	return "porkbun:domains:" + profileID
}

// GetDomains returns the cached Porkbun domain list for a profile.
func GetDomains(ctx context.Context, profileID string) ([]porkbun.Domain, error) {
	raw, err := Client.Get(ctx, domainsKey(profileID)).Result()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read domain cache: %w", err)
	}

	var domains []porkbun.Domain
	if err := json.Unmarshal([]byte(raw), &domains); err != nil {
		return nil, fmt.Errorf("failed to decode domain cache: %w", err)
	}
	return domains, nil
}

// SetDomains caches the domain list for a profile with the given TTL.
func SetDomains(ctx context.Context, profileID string, domains []porkbun.Domain, ttl time.Duration) error {
	raw, err := json.Marshal(domains)
	if err != nil {
		return fmt.Errorf("failed to encode domain cache: %w", err)
	}
	if err := Client.Set(ctx, domainsKey(profileID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write domain cache: %w", err)
	}
	return nil
}

// InvalidateDomains drops the cached domain list for a profile. Called
// after nameserver updates and profile switches so stale data never
// feeds the audit worker.
func InvalidateDomains(ctx context.Context, profileID string) error {
	return Client.Del(ctx, domainsKey(profileID)).Err()
}
