package reports

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/config"
)

func reportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

// ReportCacheKey derives a stable cache key from the report name and the
// serialized filter. Reports are recomputed from in-memory datasets, so the
// key also carries a dataset version the store bumps on every upload.
func ReportCacheKey(name string, datasetVersion int64, filter any) string {
	payload, err := json.Marshal(filter)
	if err != nil {
		payload = []byte("{}")
	}
	sum := sha1.Sum(payload)
	return "report:" + name + ":" + strconv.FormatInt(datasetVersion, 10) + ":" + hex.EncodeToString(sum[:])
}

// CachedReport returns the cached payload for key when the cache is enabled
// and holds it, otherwise computes the report and stores it best-effort.
func CachedReport[T any](key string, compute func() (T, error)) (T, error) {
	if reportCacheEnabled() {
		var cached T
		if hit, err := config.GetRedisObject(key, &cached); err == nil && hit {
			return cached, nil
		}
	}
	result, err := compute()
	if err != nil {
		return result, err
	}
	if reportCacheEnabled() {
		// Cache write failures only cost the next request a recompute.
		_ = config.SetRedisObject(key, result, reportCacheTTL())
	}
	return result, nil
}
