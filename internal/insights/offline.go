package insights

import (
	"fmt"
	"time"

	"github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/catalog"
)

var categoryActivities = map[catalog.Category]string{
	catalog.CategoryEyeContact:         "Play short face-to-face games such as peekaboo, pausing for a glance before continuing.",
	catalog.CategorySocialInteraction:  "Set up a brief turn-taking game with one familiar person and name each turn out loud.",
	catalog.CategoryCommunication:      "Narrate daily routines in short phrases and leave pauses for a response of any kind.",
	catalog.CategoryRepetitiveBehavior: "Use a picture schedule so changes in routine are shown ahead of time.",
	catalog.CategorySensorySensitivity: "Keep a quiet corner with familiar textures the child can retreat to when overwhelmed.",
	catalog.CategoryFocusAttention:     "Practice one short activity with a visual timer and celebrate finishing it.",
}

// Offline derives guidance from category trends without a provider.
func Offline(r *assessment.Report, now time.Time) *Insight {
	in := &Insight{
		Summary: fmt.Sprintf("The responses place current support needs at the %s level (%s, %d%%).",
			r.Level.DisplayName(), r.Level.Description(), r.RoundedPercentage()),
		Strengths:   []string{},
		FocusAreas:  []string{},
		Activities:  []string{},
		Disclaimer:  assessment.Disclaimer,
		Source:      SourceOffline,
		GeneratedAt: now,
	}

	for _, c := range catalog.AllCategories() {
		t, ok := r.Trend(c)
		if !ok {
			continue
		}
		if t.IsImproving {
			in.Strengths = append(in.Strengths, c.DisplayName())
			continue
		}
		in.FocusAreas = append(in.FocusAreas, c.DisplayName())
		if a, ok := categoryActivities[c]; ok {
			in.Activities = append(in.Activities, a)
		}
	}
	return in
}
