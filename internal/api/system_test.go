// system_test.go: Package api provides tests for the system endpoints.

package api

import (
	"net/http"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSystemInfo(t *testing.T) {
	e, _ := newTestController(t, nil)

	rec := doGet(e, "/api/v1/system/info")
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeJSON[SystemInfo](t, rec)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Architecture)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Positive(t, info.NumCPU)
	assert.NotEmpty(t, info.Hostname)
	assert.GreaterOrEqual(t, info.AppUptime, int64(0))
}

func TestGetResourceInfo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping resource sampling in short mode")
	}

	e, _ := newTestController(t, nil)

	rec := doGet(e, "/api/v1/system/resources")
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeJSON[ResourceInfo](t, rec)
	assert.Positive(t, info.MemoryTotal)
	assert.GreaterOrEqual(t, info.MemoryUsage, 0.0)
	assert.Positive(t, info.ProcessMem)
}
