package keywords

// SERP features that suggest an easier win for written content.
var featureBonuses = map[string]float64{
	"featured_snippet":   5,
	"people_also_ask":    3,
	"related_searches":   1,
	"knowledge_graph":    -2,
	"local_pack":         -3,
	"shopping":           -5,
	"video":              -1,
	"paid":               -2,
	"top_stories":        1,
	"answer_box":         4,
	"faq":                2,
	"people_also_search": 1,
}

// OpportunityScore combines search volume, ranking difficulty, and SERP
// feature bonuses. Volume contributes at most 50 points; non-decreasing in
// volume, non-increasing in difficulty.
func OpportunityScore(volume, difficulty int, serpFeatures []string) float64 {
	volumeScore := float64(volume) / 100
	if volumeScore > 50 {
		volumeScore = 50
	}
	difficultyScore := 50 - float64(difficulty)/2

	bonus := 0.0
	for _, feature := range serpFeatures {
		bonus += featureBonuses[feature]
	}

	return volumeScore + difficultyScore + bonus
}

// QuickWinScore is the volume-per-difficulty variant used to surface
// low-effort keywords. The +1 keeps zero-difficulty keywords finite.
func QuickWinScore(volume, difficulty int) float64 {
	return float64(volume) / float64(difficulty+1)
}
