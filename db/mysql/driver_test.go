package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpenRejectsBadDSN(t *testing.T) {
	_, err := Open("", 1, 1, time.Minute)
	assert.Error(t, err)

	_, err = Open("not a dsn", 1, 1, time.Minute)
	assert.ErrorContains(t, err, "parse dsn")
}
