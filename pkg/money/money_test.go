package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(50), ToCents(0.50))
	assert.Equal(t, int64(1234), ToCents(12.34))
	assert.Equal(t, int64(13), ToCents(0.125))
	assert.Equal(t, int64(-13), ToCents(-0.125))
	assert.Zero(t, ToCents(0))

	// 0.285 has no exact float form (0.28499...); the decimal the caller
	// wrote still rounds half-up to 29.
	assert.Equal(t, int64(29), ToCents(0.285))
	assert.Equal(t, int64(-29), ToCents(-0.285))
}

func TestFromCents(t *testing.T) {
	assert.Equal(t, 1.25, FromCents(125))
	assert.Equal(t, -0.5, FromCents(-50))
	assert.Zero(t, FromCents(0))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "2.50", FormatCents(250))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "-0.05", FormatCents(-5))
}
