package postgres

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDGeneratorIsMonotonicWithinMillisecond(t *testing.T) {
	gen := NewUserIDGenerator()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return fixed }

	first := gen.Generate()
	second := gen.Generate()

	assert.Less(t, first, second)

	parsed, err := ulid.ParseStrict(first)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(fixed), parsed.Time())
}
