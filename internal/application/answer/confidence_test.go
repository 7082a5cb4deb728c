package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceScorer_Normalize(t *testing.T) {
	s := NewConfidenceScorer(0.25, 1.20)

	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{name: "below lower bound clamps to 1", score: 0.10, want: 1.0},
		{name: "at lower bound", score: 0.25, want: 1.0},
		{name: "above upper bound clamps to 0", score: 1.50, want: 0.0},
		{name: "at upper bound", score: 1.20, want: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Normalize(tt.score))
		})
	}

	// 区间内线性递减
	assert.InDelta(t, 0.5, s.Normalize(0.725), 1e-9)
	assert.Greater(t, s.Normalize(0.4), s.Normalize(0.9))
}

func TestHitsBonus(t *testing.T) {
	assert.Equal(t, 0.0, HitsBonus(0))
	assert.Equal(t, 0.05, HitsBonus(1))
	assert.Equal(t, 0.10, HitsBonus(2))
	assert.Equal(t, 0.15, HitsBonus(3))
	assert.Equal(t, 0.15, HitsBonus(7))
	assert.Equal(t, 0.0, HitsBonus(-1))
}

func TestConfidenceScorer_Calculate(t *testing.T) {
	s := NewConfidenceScorer(0.25, 1.20)

	tests := []struct {
		name      string
		topScore  float64
		goodHits  int
		wantLevel string
		wantScore float64
		wantBase  float64
		wantBonus float64
	}{
		{
			name:     "strong match with bonus capped at 1",
			topScore: 0.20, goodHits: 3,
			wantLevel: LevelHigh, wantScore: 1.0, wantBase: 1.0, wantBonus: 0.15,
		},
		{
			name:     "high",
			topScore: 0.40, goodHits: 2,
			wantLevel: LevelHigh, wantScore: 0.942, wantBase: 0.842, wantBonus: 0.10,
		},
		{
			name:     "medium",
			topScore: 0.65, goodHits: 1,
			wantLevel: LevelMedium, wantScore: 0.629, wantBase: 0.579, wantBonus: 0.05,
		},
		{
			name:     "low",
			topScore: 0.90, goodHits: 1,
			wantLevel: LevelLow, wantScore: 0.366, wantBase: 0.316, wantBonus: 0.05,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Calculate(tt.topScore, tt.goodHits)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.InDelta(t, tt.wantBase, got.Details.Base, 1e-9)
			assert.InDelta(t, tt.wantBonus, got.Details.Bonus, 1e-9)
		})
	}
}

func TestNewConfidenceScorer_InvalidRangeFallsBack(t *testing.T) {
	s := NewConfidenceScorer(0.5, 0.3)

	// 非法区间回落到默认 0.25~1.20
	assert.Equal(t, 1.0, s.Normalize(0.25))
	assert.Equal(t, 0.0, s.Normalize(1.20))
}
