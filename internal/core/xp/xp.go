// Package xp holds the experience scoring rules shared by every
// provider adapter.
package xp

import "math"

const (
	// MinExperience is the floor for any attributed activity
	MinExperience = 1

	// TweetExperience is awarded for an authored tweet
	TweetExperience = 30

	// MentionExperience is awarded when someone else mentions the user
	MentionExperience = 20

	// RetweetExperience is the bonus awarded when someone else retweets
	// one of the user's tweets
	RetweetExperience = 10

	// levelStep scales the square-root level curve; each level costs
	// progressively more total experience
	levelStep = 30
)

// ForCommit scores a commit from its diff stats. Additions drive the
// award; empty or deletion-only commits still earn the floor.
func ForCommit(additions int) int {
	if additions > 0 {
		return additions
	}
	return MinExperience
}

// Level maps total accumulated experience to a skill level. Levels
// start at 1 and follow a square-root curve so early levels come fast
// and later ones slow down.
func Level(totalExperience int64) int {
	if totalExperience <= 0 {
		return 1
	}
	return int(math.Floor((math.Sqrt(float64(8*totalExperience)/levelStep+1)+1)/2)) //nolint:mnd
}

// NextLevelAt returns the total experience required to reach the level
// after the one totalExperience currently sits in.
func NextLevelAt(totalExperience int64) int64 {
	next := int64(Level(totalExperience)) + 1
	// inverse of the Level curve: exp(n) = step * n * (n-1) / 2
	return levelStep * next * (next - 1) / 2
}
