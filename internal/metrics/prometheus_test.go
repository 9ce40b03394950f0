package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"strata/pkg/errors"
)

func TestRecordDBQuery(t *testing.T) {
	successBefore := testutil.ToFloat64(DBQueries.WithLabelValues("clickhouse", "select_ohlcv", "success"))
	errorBefore := testutil.ToFloat64(DBQueries.WithLabelValues("clickhouse", "select_ohlcv", "error"))

	RecordDBQuery("clickhouse", "select_ohlcv", 5*time.Millisecond, nil)
	RecordDBQuery("clickhouse", "select_ohlcv", 5*time.Millisecond, errors.ErrStoreUnavailable)

	assert.Equal(t, successBefore+1,
		testutil.ToFloat64(DBQueries.WithLabelValues("clickhouse", "select_ohlcv", "success")))
	assert.Equal(t, errorBefore+1,
		testutil.ToFloat64(DBQueries.WithLabelValues("clickhouse", "select_ohlcv", "error")))
}

func TestRecordDBQuery_SeparatesDatabases(t *testing.T) {
	chBefore := testutil.ToFloat64(DBQueries.WithLabelValues("clickhouse", "insert_ohlcv", "success"))
	redisBefore := testutil.ToFloat64(DBQueries.WithLabelValues("redis", "get", "success"))

	RecordDBQuery("redis", "get", time.Millisecond, nil)

	assert.Equal(t, chBefore,
		testutil.ToFloat64(DBQueries.WithLabelValues("clickhouse", "insert_ohlcv", "success")))
	assert.Equal(t, redisBefore+1,
		testutil.ToFloat64(DBQueries.WithLabelValues("redis", "get", "success")))
}
