package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Run("missing key falls back to default", func(t *testing.T) {
		assert.Equal(t, "LIS", GetEnvString("LIMSLITE_TEST_MISSING", "LIS"))
		assert.Equal(t, 9, GetEnvInt("LIMSLITE_TEST_MISSING", 9))
	})

	t.Run("parses typed values", func(t *testing.T) {
		t.Setenv("LIMSLITE_TEST_INT", "42")
		t.Setenv("LIMSLITE_TEST_INT64", "9000000000")
		t.Setenv("LIMSLITE_TEST_BOOL", "true")
		t.Setenv("LIMSLITE_TEST_FLOAT", "0.5")

		assert.Equal(t, 42, GetEnvInt("LIMSLITE_TEST_INT", 0))
		assert.Equal(t, int64(9000000000), GetEnvInt64("LIMSLITE_TEST_INT64", 0))
		assert.True(t, GetEnvBool("LIMSLITE_TEST_BOOL", false))
		assert.Equal(t, 0.5, GetEnvFloat("LIMSLITE_TEST_FLOAT", 0))
		assert.Equal(t, 42*time.Second, GetEnvSeconds("LIMSLITE_TEST_INT", 1))
	})

	t.Run("unparseable value falls back to default", func(t *testing.T) {
		t.Setenv("LIMSLITE_TEST_BAD_INT", "forty")
		assert.Equal(t, 7, GetEnvInt("LIMSLITE_TEST_BAD_INT", 7))
	})
}
