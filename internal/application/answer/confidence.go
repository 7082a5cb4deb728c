package answer

import "math"

// 置信度等级
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// ConfidenceScorer 把距离分数归一化为置信度
// 向量检索返回的是 distance（越小越相似），这里映射到 0.0~1.0 并按
// 优质命中数追加小幅奖励。
type ConfidenceScorer struct {
	scoreMin float64
	scoreMax float64
}

func NewConfidenceScorer(scoreMin, scoreMax float64) *ConfidenceScorer {
	if scoreMax <= scoreMin {
		scoreMin, scoreMax = defaultConfScoreMin, defaultConfScoreMax
	}
	return &ConfidenceScorer{scoreMin: scoreMin, scoreMax: scoreMax}
}

const (
	defaultConfScoreMin = 0.25
	defaultConfScoreMax = 1.20
)

// Normalize 距离到基础置信度的线性映射，区间外钳到 1.0 / 0.0
func (s *ConfidenceScorer) Normalize(score float64) float64 {
	if score <= s.scoreMin {
		return 1.0
	}
	if score >= s.scoreMax {
		return 0.0
	}
	return 1.0 - (score-s.scoreMin)/(s.scoreMax-s.scoreMin)
}

// HitsBonus 优质命中数奖励，3 个及以上封顶
func HitsBonus(goodHits int) float64 {
	switch {
	case goodHits >= 3:
		return 0.15
	case goodHits == 2:
		return 0.10
	case goodHits == 1:
		return 0.05
	default:
		return 0.0
	}
}

// Calculate 计算综合置信度
// score = min(base+bonus, 1.0)，>=0.75 为 high，>=0.5 为 medium，其余 low。
func (s *ConfidenceScorer) Calculate(topScore float64, goodHits int) Confidence {
	base := s.Normalize(topScore)
	bonus := HitsBonus(goodHits)
	final := math.Min(base+bonus, 1.0)

	level := LevelLow
	switch {
	case final >= 0.75:
		level = LevelHigh
	case final >= 0.5:
		level = LevelMedium
	}

	return Confidence{
		Level: level,
		Score: round3(final),
		Details: ConfidenceDetails{
			Base:  round3(base),
			Bonus: round3(bonus),
		},
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
