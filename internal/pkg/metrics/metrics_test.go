package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(transitions.WithLabelValues("maintenance", "advance", "ok"))
	RecordTransition("maintenance", "advance", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(transitions.WithLabelValues("maintenance", "advance", "ok")))

	before = testutil.ToFloat64(transitions.WithLabelValues("complaint", "revert", "error"))
	RecordTransition("complaint", "revert", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(transitions.WithLabelValues("complaint", "revert", "error")))
}

func TestRecordCacheRequest(t *testing.T) {
	before := testutil.ToFloat64(cacheRequests.WithLabelValues("dashboard", "hit"))
	RecordCacheRequest("dashboard", true)
	assert.Equal(t, before+1, testutil.ToFloat64(cacheRequests.WithLabelValues("dashboard", "hit")))
}
