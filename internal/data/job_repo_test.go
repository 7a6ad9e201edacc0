package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openpalette/genstudio/internal/domain/model"
)

func TestUpdateBuilder(t *testing.T) {
	b := &updateBuilder{}
	b.set("status", "completed")
	b.set("retry_count", 2)
	b.setExpr("connection_id = NULL")

	assert.Equal(t, "status = $1, retry_count = $2, connection_id = NULL", b.clauses())
	assert.Equal(t, []any{"completed", 2}, b.args)

	where := b.arg("job-1")
	assert.Equal(t, "$3", where)
	assert.Len(t, b.args, 3)
}

func TestPaddedMillis(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	padded := paddedMillis(at)

	assert.Len(t, padded, 20)
	assert.Equal(t, "0", padded[:1], "millis must be zero-padded for lexical ordering")

	later := paddedMillis(at.Add(time.Second))
	assert.Less(t, padded, later)
}

func TestPaddedMillisMatchesSortKeySuffix(t *testing.T) {
	at := time.Now()
	key := model.JobSortKey(model.JobStatusPending, model.DefaultPriority, at)
	assert.Contains(t, key, "#"+paddedMillis(at))
}
