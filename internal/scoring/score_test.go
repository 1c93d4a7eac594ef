package scoring

import "testing"

func TestScorePerfectSignals(t *testing.T) {
	res := Score(Signals{
		ProfessionMatched: true,
		TechStackOverlap:  1,
		LanguageMatched:   true,
		LevelMatched:      true,
		TimezoneMatched:   true,
	})
	if res.Percentage != 100 {
		t.Fatalf("expected 100, got %v", res.Percentage)
	}
	if !res.MeetsThreshold {
		t.Fatalf("expected threshold met")
	}
}

func TestScoreEmptySignals(t *testing.T) {
	res := Score(Signals{})
	if res.Percentage != 0 {
		t.Fatalf("expected 0, got %v", res.Percentage)
	}
	if res.MeetsThreshold {
		t.Fatalf("expected threshold not met")
	}
}

func TestScoreOverlapClamped(t *testing.T) {
	low := Score(Signals{TechStackOverlap: -5})
	if low.Percentage != 0 {
		t.Fatalf("negative overlap should clamp to 0, got %v", low.Percentage)
	}
	high := Score(Signals{TechStackOverlap: 7})
	capped := Score(Signals{TechStackOverlap: 1})
	if high.Percentage != capped.Percentage {
		t.Fatalf("overlap above 1 should clamp: %v vs %v", high.Percentage, capped.Percentage)
	}
}

func TestScoreRangeAndMonotonicity(t *testing.T) {
	bools := []bool{false, true}
	overlaps := []float64{0, 0.25, 0.5, 0.75, 1}

	for _, prof := range bools {
		for _, lang := range bools {
			for _, level := range bools {
				for _, tz := range bools {
					var prev float64 = -1
					for _, ov := range overlaps {
						res := Score(Signals{
							ProfessionMatched: prof,
							TechStackOverlap:  ov,
							LanguageMatched:   lang,
							LevelMatched:      level,
							TimezoneMatched:   tz,
						})
						if res.Percentage < 0 || res.Percentage > 100 {
							t.Fatalf("percentage out of range: %v", res.Percentage)
						}
						if res.Percentage < prev {
							t.Fatalf("increasing overlap decreased score: %v -> %v", prev, res.Percentage)
						}
						prev = res.Percentage
					}
				}
			}
		}
	}

	// Flipping any one boolean on never lowers the score.
	base := Signals{TechStackOverlap: 0.5}
	baseScore := Score(base).Percentage
	variants := []Signals{
		{TechStackOverlap: 0.5, ProfessionMatched: true},
		{TechStackOverlap: 0.5, LanguageMatched: true},
		{TechStackOverlap: 0.5, LevelMatched: true},
		{TechStackOverlap: 0.5, TimezoneMatched: true},
	}
	for _, v := range variants {
		if got := Score(v).Percentage; got < baseScore {
			t.Fatalf("improved signal lowered score: %v < %v (%+v)", got, baseScore, v)
		}
	}
}

func TestScoreThresholdBoundary(t *testing.T) {
	// profession + tech + language = 75, above the cutoff.
	pass := Score(Signals{ProfessionMatched: true, TechStackOverlap: 1, LanguageMatched: true})
	if !pass.MeetsThreshold {
		t.Fatalf("expected %v to clear threshold", pass.Percentage)
	}
	// profession + language + level = 65, below the cutoff.
	fail := Score(Signals{ProfessionMatched: true, LanguageMatched: true, LevelMatched: true})
	if fail.MeetsThreshold {
		t.Fatalf("expected %v to miss threshold", fail.Percentage)
	}
}
