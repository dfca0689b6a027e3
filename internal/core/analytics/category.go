package analytics

import "strings"

const CategoryOther = "Other"

type categoryRule struct {
	category string
	keywords []string
}

// categoryRules is evaluated top to bottom and the first match wins.
// Fitness must stay ahead of Productivity so that "workout" is not read as "work".
var categoryRules = []categoryRule{
	{category: "Fitness", keywords: []string{"run", "jog", "gym", "workout", "exercise", "fitness", "yoga", "walk", "swim", "bike", "cycling", "cardio", "pushup", "squat", "stretch"}},
	{category: "Learning", keywords: []string{"read", "study", "learn", "book", "course", "lesson", "language"}},
	{category: "Wellness", keywords: []string{"meditat", "mindful", "journal", "gratitude", "breath"}},
	{category: "Health", keywords: []string{"water", "sleep", "diet", "vitamin", "hydrat", "nutrition"}},
	{category: "Productivity", keywords: []string{"work", "code", "coding", "project", "email", "focus"}},
}

// Classify picks a category: the first non-blank tag verbatim, else the
// category hint, else a keyword match on the name. Blank tags are skipped,
// so a habit tagged only with whitespace falls through to the hint.
func Classify(name string, tags []string, hint string) string {
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			return t
		}
	}

	if h := strings.TrimSpace(hint); h != "" {
		return h
	}

	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
