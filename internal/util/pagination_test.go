package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	from, limit := Calculate(1, 50)
	assert.Equal(t, 0, from)
	assert.Equal(t, 50, limit)

	from, limit = Calculate(3, 20)
	assert.Equal(t, 40, from)
	assert.Equal(t, 20, limit)

	from, limit = Calculate(0, 0)
	assert.Equal(t, 0, from)
	assert.Equal(t, 50, limit)

	from, limit = Calculate(2, 500)
	assert.Equal(t, 50, from)
	assert.Equal(t, 50, limit)
}
