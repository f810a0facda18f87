package snapshot

import "strings"

// Tier is the relevance bucket of a snapshot line.
type Tier int

const (
	TierCritical Tier = iota
	TierImportant
	TierOptional
)

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierImportant:
		return "important"
	default:
		return "optional"
	}
}

// Stats counts the element kinds seen while classifying.
type Stats struct {
	Buttons    int
	Links      int
	Inputs     int
	Headings   int
	Navigation int
	Content    int
}

// Classified is a snapshot split into relevance tiers. Every input line is
// in exactly one tier, and each tier keeps the original line order.
type Classified struct {
	Critical  []string
	Important []string
	Optional  []string
	Stats     Stats
}

// Total returns the number of classified lines.
func (c *Classified) Total() int {
	return len(c.Critical) + len(c.Important) + len(c.Optional)
}

// Classify buckets each line of an accessibility snapshot. Lines are kept
// untrimmed; matching looks at the trimmed text only.
func Classify(snapshot string) *Classified {
	c := &Classified{}
	for _, line := range strings.Split(snapshot, "\n") {
		switch classifyLine(strings.TrimSpace(line), &c.Stats) {
		case TierCritical:
			c.Critical = append(c.Critical, line)
		case TierImportant:
			c.Important = append(c.Important, line)
		default:
			c.Optional = append(c.Optional, line)
		}
	}
	return c
}

// ClassifyLine reports the tier a single line would be assigned.
func ClassifyLine(line string) Tier {
	var discard Stats
	return classifyLine(strings.TrimSpace(line), &discard)
}

// classifyLine applies the rules in order; the first match wins. Matching is
// case-sensitive substring containment.
func classifyLine(s string, st *Stats) Tier {
	has := func(sub string) bool { return strings.Contains(s, sub) }

	switch {
	case has("button") && (has("submit") || has("send") || has("save") || has("login")):
		st.Buttons++
		return TierCritical
	case has("textbox") || has("combobox") || has("checkbox"):
		st.Inputs++
		return TierCritical
	case has("navigation") || has("menu"):
		st.Navigation++
		return TierCritical
	case has("heading") && !has("[level=5]") && !has("[level=6]"):
		st.Headings++
		return TierImportant
	case has("link") && !has("javascript:") && !has("#"):
		st.Links++
		return TierImportant
	case has("button"):
		st.Buttons++
		return TierImportant
	}

	if has("text:") || has("paragraph") {
		st.Content++
	}
	return TierOptional
}
