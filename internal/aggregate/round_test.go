package aggregate

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{8.0, 8.0},
		{7.666666, 7.67},
		{1.005, 1.01},
		{2.675, 2.68},
		{-1.005, -1.01},
		{0.125, 0.13},
		{0.124, 0.12},
		{85, 85},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}

func TestRound2_NonFinite(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, math.Inf(1), Round2(math.Inf(1)))
		assert.Equal(t, math.Inf(-1), Round2(math.Inf(-1)))
		assert.True(t, math.IsNaN(Round2(math.NaN())))
	})
}
