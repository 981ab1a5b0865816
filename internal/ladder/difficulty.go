package ladder

import (
	"strconv"
	"strings"
)

type Difficulty string

const (
	DifficultyNone   Difficulty = ""
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func HasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(strings.TrimSpace(tag), want) {
			return true
		}
	}
	return false
}

// DifficultyOf picks the LeetCode-style difficulty tag, preferring easy over
// medium over hard when several are present.
func DifficultyOf(tags []string) Difficulty {
	for _, level := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if HasTag(tags, string(level)) {
			return level
		}
	}
	return DifficultyNone
}

func IsCodeChef(tags []string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), "codechef") {
			return true
		}
	}
	return false
}

const (
	MinRating = 100
	MaxRating = 4000
)

// RatingFromTags returns the first tag that parses as an integer rating in
// [MinRating, MaxRating]. Only the leading digits of a tag are considered.
func RatingFromTags(tags []string) (int, bool) {
	for _, tag := range tags {
		value, ok := leadingInt(tag)
		if !ok {
			continue
		}
		if value >= MinRating && value <= MaxRating {
			return value, true
		}
	}
	return 0, false
}

func leadingInt(text string) (int, bool) {
	text = strings.TrimSpace(text)
	end := 0
	if end < len(text) && (text[end] == '-' || text[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	value, err := strconv.Atoi(text[:end])
	if err != nil {
		return 0, false
	}
	return value, true
}

type RatingBand struct {
	Label string
	Max   int // inclusive upper bound; 0 for the open-ended top band
}

var RatingBands = []RatingBand{
	{Label: "1★ (≤1399)", Max: 1399},
	{Label: "2★ (1400-1599)", Max: 1599},
	{Label: "3★ (1600-1799)", Max: 1799},
	{Label: "4★ (1800-1999)", Max: 1999},
	{Label: "5★ (2000-2199)", Max: 2199},
	{Label: "6★ (2200-2499)", Max: 2499},
	{Label: "7★ (≥2500)"},
}

func BandFor(rating int) string {
	for _, band := range RatingBands {
		if band.Max == 0 || rating <= band.Max {
			return band.Label
		}
	}
	return RatingBands[len(RatingBands)-1].Label
}

// StarTier maps a CodeChef rating to its 1..9 star colour tier.
func StarTier(rating int) int {
	thresholds := []int{1400, 1600, 1800, 2000, 2200, 2500, 2800, 3000}
	for idx, limit := range thresholds {
		if rating < limit {
			return idx + 1
		}
	}
	return len(thresholds) + 1
}
