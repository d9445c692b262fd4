package pubsite

import (
	"math"
	"strconv"
)

// DefaultWordsPerMinute is the reading speed used when none is configured.
const DefaultWordsPerMinute = 265

// MinutesToLabel formats a reading-time estimate for the post badge.
// Estimates under one minute, and non-finite ones, get no badge. The number is printed as given.
func MinutesToLabel(minutes float64) (string, bool) {
	if !(minutes >= 1) || math.IsInf(minutes, 1) { // also catches NaN
		return "", false
	}
	if minutes == 1 {
		return "About 1 minute to read", true
	}
	return "About " + strconv.FormatFloat(minutes, 'f', -1, 64) + " minutes to read", true
}

// EstimateReadingMinutes rounds words/wpm to the nearest whole minute.
func EstimateReadingMinutes(words, wpm int) float64 {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	return math.Round(float64(words) / float64(wpm))
}
