package contrib

import "codeladder/internal/ladder"

type DifficultyStats struct {
	Easy   ladder.Progress
	Medium ladder.Progress
	Hard   ladder.Progress
	All    ladder.Progress
}

// ComputeDifficulty counts each problem in every difficulty bucket whose tag
// it carries, plus the overall bucket.
func ComputeDifficulty(problems []ladder.Problem, username string) DifficultyStats {
	var stats DifficultyStats
	for _, problem := range problems {
		solved := problem.IsSolvedBy(username)
		tally(&stats.All, solved)
		if ladder.HasTag(problem.Tags, string(ladder.DifficultyEasy)) {
			tally(&stats.Easy, solved)
		}
		if ladder.HasTag(problem.Tags, string(ladder.DifficultyMedium)) {
			tally(&stats.Medium, solved)
		}
		if ladder.HasTag(problem.Tags, string(ladder.DifficultyHard)) {
			tally(&stats.Hard, solved)
		}
	}
	return stats
}

type BandStat struct {
	Label string
	ladder.Progress
}

// EmptyRatingBands is the zero shape: every band present with no problems.
func EmptyRatingBands() []BandStat {
	bands := make([]BandStat, len(ladder.RatingBands))
	for idx, band := range ladder.RatingBands {
		bands[idx] = BandStat{Label: band.Label}
	}
	return bands
}

// ComputeRatingBands buckets CodeChef problems that carry a rating tag.
func ComputeRatingBands(problems []ladder.Problem, username string) []BandStat {
	bands := EmptyRatingBands()
	index := make(map[string]int, len(bands))
	for idx, band := range bands {
		index[band.Label] = idx
	}

	for _, problem := range problems {
		if !ladder.IsCodeChef(problem.Tags) {
			continue
		}
		rating, ok := ladder.RatingFromTags(problem.Tags)
		if !ok {
			continue
		}
		tally(&bands[index[ladder.BandFor(rating)]].Progress, problem.IsSolvedBy(username))
	}
	return bands
}

func tally(progress *ladder.Progress, solved bool) {
	progress.Total++
	if solved {
		progress.Solved++
	}
}
