package main

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/labhal/internal/collection"
	"github.com/meshintel/labhal/internal/hal"
	"github.com/meshintel/labhal/pkg/types"
)

// unreachableTransport fails every request, simulating a repository
// outage during the collection import.
type unreachableTransport struct{}

func (unreachableTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("repository unreachable")
}

func TestLoadOrImportIndex_ImportFailureDegradesToPartialIndex(t *testing.T) {
	client := &hal.Client{
		HTTP:      &http.Client{Transport: unreachableTransport{}},
		UserAgent: defaultUserAgent,
	}
	cfg := types.CollectionConfig{
		HTTPConfig: types.HTTPConfig{Timeout: time.Second, UserAgent: defaultUserAgent},
		Code:       "MIP",
		StartYear:  2020,
		EndYear:    2024,
		CacheDir:   t.TempDir(),
	}

	index, err := loadOrImportIndex(context.Background(), client, cfg)
	require.NoError(t, err, "an import failure must degrade, not abort the run")
	require.NotNil(t, index)
	assert.Equal(t, 0, index.Len())

	// The incomplete snapshot must not have been cached.
	cache, err := collection.OpenCache(cfg.CacheDir)
	require.NoError(t, err)
	defer cache.Close()
	_, ok, err := cache.Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadOrImportIndex_EmptyCodeSkipsImport(t *testing.T) {
	client := &hal.Client{
		HTTP:      &http.Client{Transport: unreachableTransport{}},
		UserAgent: defaultUserAgent,
	}
	cfg := types.CollectionConfig{
		HTTPConfig: types.HTTPConfig{Timeout: time.Second, UserAgent: defaultUserAgent},
	}

	index, err := loadOrImportIndex(context.Background(), client, cfg)
	require.NoError(t, err)
	require.NotNil(t, index)
	assert.Equal(t, 0, index.Len())
}
