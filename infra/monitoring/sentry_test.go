package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/liftdispatch/core/monitoring"
)

func TestNewSentryMonitorDisabled(t *testing.T) {
	m, err := NewSentryMonitor(Config{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitorBadDSN(t *testing.T) {
	_, err := NewSentryMonitor(Config{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestSentryMonitorSendsEvents(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/1/") {
			hits.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dsn := strings.Replace(srv.URL, "http://", "http://public@", 1) + "/1"
	m, err := NewSentryMonitor(Config{DSN: dsn, Environment: "test"})
	require.NoError(t, err)

	m.CaptureException(errors.New("duplicate commit"), map[string]string{"kind": "duplicate_commit"})
	m.CaptureException(nil, nil)
	m.Flush(2 * time.Second)
	assert.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}
