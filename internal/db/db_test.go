package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRejectsBadIdleTime(t *testing.T) {
	_, err := New("postgres://localhost:1/none?sslmode=disable", 1, 1, "fifteen minutes")
	assert.ErrorContains(t, err, "invalid max idle time")
}
