package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfidence(t *testing.T) {
	cases := []struct {
		name      string
		distances []float64
		expected  int
	}{
		{name: "no distances defaults to mid band", distances: nil, expected: 75},
		{name: "empty slice defaults to mid band", distances: []float64{}, expected: 75},
		{name: "near exact match overrides branch math", distances: []float64{0.3, 0.3}, expected: 100},
		{name: "just below override boundary", distances: []float64{0.49}, expected: 100},
		{name: "override boundary is exclusive", distances: []float64{0.5}, expected: 95},
		{name: "close band truncates toward zero", distances: []float64{0.55}, expected: 94},
		{name: "close band upper edge", distances: []float64{0.69}, expected: 93},
		{name: "mid band start", distances: []float64{0.7}, expected: 95},
		{name: "mid band clamps at floor", distances: []float64{1.0}, expected: 75},
		{name: "far band", distances: []float64{1.5}, expected: 50},
		{name: "far band clamps at floor", distances: []float64{2.0}, expected: 30},
		{name: "very far stays at floor", distances: []float64{10.0}, expected: 30},
		{name: "mixed distances average first", distances: []float64{0.2, 1.0}, expected: 94},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Confidence(tc.distances))
		})
	}
}
