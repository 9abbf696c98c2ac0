package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_EffectiveTime(t *testing.T) {
	published := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, updated, Record{Published: published, Updated: updated}.EffectiveTime())
	assert.Equal(t, published, Record{Published: published}.EffectiveTime())
	assert.True(t, Record{}.EffectiveTime().IsZero())
}
