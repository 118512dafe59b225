// internal/service/listening/fallback.go

package listening

import (
	"fmt"
	"time"

	"trendwise/internal/domain/trend"
)

// Scoring of synthesized records
var (
	FallbackScoring       = trend.Scoring{Base: 85, Step: 2, Floor: 45}
	SocialFallbackScoring = trend.Scoring{Base: 80, Step: 3, Floor: 45}
)

const (
	fallbackLimit       = 15
	socialFallbackLimit = 10
	currentEventsTaken  = 3
	technologyTaken     = 5
	socialCategory      = "Social"
)

type dayPart int

const (
	morning dayPart = iota
	afternoon
	evening
)

func dayPartOf(hour int) dayPart {
	switch {
	case hour >= 5 && hour < 12:
		return morning
	case hour >= 12 && hour < 17:
		return afternoon
	default:
		return evening
	}
}

var dayPartTopics = map[dayPart][]string{
	morning: {
		"Stock futures point to a cautious market open",
		"Morning commute disruptions across major cities",
		"Breakfast habits linked to sharper focus",
	},
	afternoon: {
		"Midday earnings surprise lifts retail shares",
		"Lunchtime productivity hacks gaining traction",
		"Afternoon weather alerts issued for coastal regions",
	},
	evening: {
		"Prime time streaming premieres draw record audiences",
		"Evening sports highlights and late match results",
		"Night sky viewing conditions for the week ahead",
	},
}

// seasonalTopics is indexed by seasonOf
var seasonalTopics = [4][]string{
	{
		"Winter storm preparedness checklist for households",
		"Cold season flu vaccination rates climb",
		"Holiday travel rebound strains airports",
	},
	{
		"Spring cleaning apps help declutter homes",
		"Allergy levels spike as pollen counts rise",
		"Graduation season sparks job search surge",
	},
	{
		"Heatwave safety tips as temperatures soar",
		"Summer festival lineups announced nationwide",
		"Vacation rental prices reach peak levels",
	},
	{
		"Back to school technology shopping guide",
		"Fall foliage road trips gain popularity",
		"Harvest festivals celebrate local farmers",
	},
}

// seasonOf maps Dec-Feb, Mar-May, Jun-Aug and Sep-Nov to 0..3
func seasonOf(month time.Month) int {
	return (int(month) % 12) / 3
}

var currentEventTopics = []string{
	"Global climate summit negotiators reach draft deal",
	"Central bank signals pause on interest rates",
	"Election campaign debates shape voter sentiment",
	"Humanitarian aid convoys reach conflict zones",
}

var technologyTopics = []string{
	"Open source AI models rival proprietary systems",
	"Quantum computing startup demonstrates error correction",
	"Electric vehicle battery breakthrough extends range",
	"Cybersecurity agencies warn of ransomware wave",
	"Smartphone makers bet on foldable displays",
	"Satellite internet expands rural coverage",
}

// Synthesizer produces plausible trending topics from the time of day and
// season alone. Output depends only on the instant it is computed for.
type Synthesizer struct {
	Now func() time.Time
}

// NewSynthesizer creates a synthesizer reading the given clock
func NewSynthesizer(now func() time.Time) *Synthesizer {
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{Now: now}
}

// Synthesize returns the fallback list for the current instant
func (s *Synthesizer) Synthesize() []trend.Trend {
	return s.SynthesizeAt(s.Now())
}

// SynthesizeAt returns the fallback list for instant t
func (s *Synthesizer) SynthesizeAt(t time.Time) []trend.Trend {
	titles := make([]string, 0, 14)
	titles = append(titles, dayPartTopics[dayPartOf(t.Hour())]...)
	titles = append(titles, seasonalTopics[seasonOf(t.Month())]...)
	titles = append(titles, currentEventTopics[:currentEventsTaken]...)
	titles = append(titles, technologyTopics[:technologyTaken]...)
	if len(titles) > fallbackLimit {
		titles = titles[:fallbackLimit]
	}

	trends := make([]trend.Trend, 0, len(titles))
	for i, title := range titles {
		trends = append(trends, trend.NewTrend(title, fallbackCategory(i), trend.SourceSynthesized, FallbackScoring.ScoreAt(i)))
	}
	return trends
}

func fallbackCategory(index int) string {
	switch {
	case index < 3:
		return "Breaking"
	case index < 6:
		return "Technology"
	case index < 9:
		return "Innovation"
	default:
		return "Trending"
	}
}

var weekdaySocialTopics = []string{
	"Remote work debates heat up across feeds",
	"Developers share viral desk setups",
	"Office humor memes dominate timelines",
}

var weekendSocialTopics = []string{
	"Weekend recipe challenges go viral",
	"Fans react to surprise sports upsets",
	"DIY home projects fill photo galleries",
}

var dayPartSocialTopics = map[dayPart][]string{
	morning:   {"Early risers post sunrise photography", "Coffee rituals spark friendly rivalry"},
	afternoon: {"Lunch break polls spark heated threads", "Midday playlist swaps catch on"},
	evening:   {"Live streamers break concurrent viewer records", "Late night co-op sessions trend"},
}

var evergreenSocialTopics = []string{
	"Creator economy payouts reshape influencer careers",
	"Meme stock chatter returns to forums",
	"Fitness challenge hashtags climb charts",
	"Pet adoption stories win hearts online",
	"Gaming community celebrates indie hit",
}

// SocialSynthesizer produces plausible social-feed topics from the day of the
// week and time of day
type SocialSynthesizer struct {
	Now func() time.Time
}

// NewSocialSynthesizer creates a social synthesizer reading the given clock
func NewSocialSynthesizer(now func() time.Time) *SocialSynthesizer {
	if now == nil {
		now = time.Now
	}
	return &SocialSynthesizer{Now: now}
}

// Synthesize returns the social fallback list for the current instant
func (s *SocialSynthesizer) Synthesize() []trend.Trend {
	return s.SynthesizeAt(s.Now())
}

// SynthesizeAt returns the social fallback list for instant t
func (s *SocialSynthesizer) SynthesizeAt(t time.Time) []trend.Trend {
	dayTopics := weekdaySocialTopics
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		dayTopics = weekendSocialTopics
	}

	titles := make([]string, 0, 10)
	titles = append(titles, dayTopics...)
	titles = append(titles, dayPartSocialTopics[dayPartOf(t.Hour())]...)
	titles = append(titles, evergreenSocialTopics...)
	if len(titles) > socialFallbackLimit {
		titles = titles[:socialFallbackLimit]
	}

	trends := make([]trend.Trend, 0, len(titles))
	for i, title := range titles {
		trends = append(trends, trend.NewTrend(fmt.Sprintf("%s %d", title, t.Year()), socialCategory,
			trend.SourceSocial, SocialFallbackScoring.ScoreAt(i)))
	}
	return trends
}
