package scoring

import "math"

// Signal weights. They sum to 100 so a perfect candidate/interviewer pair
// scores exactly 100.
const (
	professionWeight = 30.0
	techStackWeight  = 25.0
	languageWeight   = 20.0
	levelWeight      = 15.0
	timezoneWeight   = 10.0

	threshold = 70.0
)

// Signals are the per-pair match inputs fed by the matching engine.
type Signals struct {
	ProfessionMatched bool    `json:"professionMatched"`
	TechStackOverlap  float64 `json:"techStackOverlap"`
	LanguageMatched   bool    `json:"languageMatched"`
	LevelMatched      bool    `json:"levelMatched"`
	TimezoneMatched   bool    `json:"timezoneMatched"`
}

// Result is the computed match quality.
type Result struct {
	Percentage     float64 `json:"percentage"`
	MeetsThreshold bool    `json:"meetsThreshold"`
}

// Score turns match signals into a 0-100 percentage and a pass/fail verdict.
// Pure and deterministic; monotonic in every signal.
func Score(s Signals) Result {
	overlap := s.TechStackOverlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap > 1 {
		overlap = 1
	}

	total := techStackWeight * overlap
	if s.ProfessionMatched {
		total += professionWeight
	}
	if s.LanguageMatched {
		total += languageWeight
	}
	if s.LevelMatched {
		total += levelWeight
	}
	if s.TimezoneMatched {
		total += timezoneWeight
	}

	pct := math.Round(total*10) / 10
	return Result{
		Percentage:     pct,
		MeetsThreshold: pct >= threshold,
	}
}
