package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) GeocodeDistrict(_ context.Context, _, _ string) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 7.29, Lon: 80.63, PlaceName: "Kandy", FormattedAddress: "Kandy, Central Province, Sri Lanka"},
	}
	metrics := testMetrics()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.GeocodeDistrict(context.Background(), "Kandy", "lk")
	require.NoError(t, err)
	assert.Equal(t, "Kandy", r1.PlaceName)

	r2, err := cached.GeocodeDistrict(context.Background(), "Kandy", "lk")
	require.NoError(t, err)
	assert.Equal(t, "Kandy", r2.PlaceName)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{PlaceName: "Place", FormattedAddress: "Place, Sri Lanka"},
	}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.GeocodeDistrict(context.Background(), "Kandy", "lk")
	_, _ = cached.GeocodeDistrict(context.Background(), "Galle", "lk")
	_, _ = cached.GeocodeDistrict(context.Background(), "Kandy", "in")

	assert.Equal(t, 3, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.GeocodeDistrict(context.Background(), "Atlantis", "lk")
	_, _ = cached.GeocodeDistrict(context.Background(), "Atlantis", "lk")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorPassedThrough(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.GeocodeDistrict(context.Background(), "Kandy", "lk")
	require.Error(t, err)
	assert.Zero(t, cached.cache.len())
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.PlaceName)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})
	c.put("c", domain.GeocodingResult{PlaceName: "C"})

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")
	assert.Equal(t, 2, c.len())

	result, ok := c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result.PlaceName)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{PlaceName: "A"})
	c.put("b", domain.GeocodingResult{PlaceName: "B"})
	c.get("a")
	c.put("c", domain.GeocodingResult{PlaceName: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{PlaceName: "A1"})
	c.put("a", domain.GeocodingResult{PlaceName: "A2"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.PlaceName)
	assert.Equal(t, 1, c.len())
}
