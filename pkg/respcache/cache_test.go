package respcache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastship/fastship/pkg/infra/store"
	"github.com/fastship/fastship/pkg/respcache"
)

func newTestCache(t *testing.T) (*respcache.Cache, redismock.ClientMock) {
	t.Helper()
	redisClient, mock := redismock.NewClientMock()
	storeClient := store.NewClient(redisClient, time.Second, logrus.New())
	return respcache.NewCache(storeClient, logrus.New()), mock
}

func TestKey_StableAcrossQueryOrder(t *testing.T) {
	a := respcache.Key("GET", "/api/v1/shipment", "id=123&fields=status", "")
	b := respcache.Key("GET", "/api/v1/shipment", "fields=status&id=123", "")
	assert.Equal(t, a, b)
}

func TestKey_VariesWithInputs(t *testing.T) {
	base := respcache.Key("GET", "/api/v1/shipment", "id=123", "")
	assert.NotEqual(t, base, respcache.Key("GET", "/api/v1/shipment", "id=124", ""))
	assert.NotEqual(t, base, respcache.Key("GET", "/api/v1/shipment/track", "id=123", ""))
	assert.NotEqual(t, base, respcache.Key("GET", "/api/v1/shipment", "id=123", "principal:seller-1"))
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "shipment", respcache.Namespace("/api/v1/shipment"))
	assert.Equal(t, "shipment", respcache.Namespace("/api/v1/shipment/track"))
	assert.Equal(t, "seller", respcache.Namespace("/api/v1/seller/me"))
	assert.Equal(t, "root", respcache.Namespace("/"))
}

func TestCache_LookupHit(t *testing.T) {
	cache, mock := newTestCache(t)
	key := respcache.Key("GET", "/api/v1/shipment", "id=123", "")

	stored := &respcache.Entry{Status: 200, Headers: map[string]string{"Content-Type": "application/json"}, Body: []byte(`{"id":"123"}`), StoredAt: time.Now().UTC()}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	mock.ExpectGet(key).SetVal(string(raw))

	entry, hit := cache.Lookup(context.Background(), key)
	require.True(t, hit)
	assert.Equal(t, 200, entry.Status)
	assert.Equal(t, []byte(`{"id":"123"}`), entry.Body)
}

func TestCache_LookupMiss(t *testing.T) {
	cache, mock := newTestCache(t)
	key := respcache.Key("GET", "/api/v1/shipment", "id=123", "")

	mock.ExpectGet(key).RedisNil()
	_, hit := cache.Lookup(context.Background(), key)
	assert.False(t, hit)
}

func TestCache_LookupDegradedIsMiss(t *testing.T) {
	cache, mock := newTestCache(t)
	key := respcache.Key("GET", "/api/v1/shipment", "id=123", "")

	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	_, hit := cache.Lookup(context.Background(), key)
	assert.False(t, hit)
}

func TestCache_StoreAndInvalidate(t *testing.T) {
	cache, mock := newTestCache(t)
	key := respcache.Key("GET", "/api/v1/shipment", "id=123", "")

	entry := &respcache.Entry{Status: 200, Body: []byte("{}"), StoredAt: time.Unix(1740730536, 0).UTC()}
	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	mock.ExpectSet(key, string(raw), 5*time.Minute).SetVal("OK")
	cache.Store(context.Background(), key, entry, 5*time.Minute)

	mock.ExpectScan(0, "cache:response:shipment:*", 100).SetVal([]string{key}, 0)
	mock.ExpectDel(key).SetVal(1)

	deleted, err := cache.Invalidate(context.Background(), "shipment")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_InvalidateDegraded(t *testing.T) {
	cache, mock := newTestCache(t)

	mock.ExpectScan(0, "cache:response:shipment:*", 100).SetErr(errors.New("timeout"))
	_, err := cache.Invalidate(context.Background(), "shipment")
	assert.ErrorIs(t, err, store.ErrDegraded)
}
