// internal/service/listening/parsers.go

package listening

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"trendwise/internal/domain/trend"
)

// Parser turns a raw source payload into trend records.
// Parse never fails: a payload it cannot read yields no records.
type Parser interface {
	Parse(raw []byte) []trend.Trend
}

// Per-source scoring. These encode relative source authority and are kept
// exactly as tuned.
var (
	SearchTrendsScoring = trend.Scoring{Base: 95, Step: 3, Floor: 70}
	RepositoryScoring   = trend.Scoring{Base: 80, Step: 3, Floor: 60}
	SyndicationScoring  = trend.Scoring{Base: 95, Step: 5, Floor: 60}
)

const (
	searchTrendsLimit    = 10
	repositoryLimit      = 5
	syndicationLimit     = 10
	repositoryTitleRunes = 100

	defaultSearchCategory      = "Trending"
	defaultRepositoryCategory  = "Technology"
	defaultSyndicationCategory = "Trending"
)

// searchTrendListKeys are tried in order until one yields an entry
var searchTrendListKeys = []string{"trending_searches", "daily_search_trends", "realtime_search_trends"}

type searchTrendEntry struct {
	Query      string          `json:"query"`
	Categories []categoryLabel `json:"categories"`
}

// categoryLabel accepts either "Sports" or {"name": "Sports"}
type categoryLabel string

func (c *categoryLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = categoryLabel(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*c = categoryLabel(obj.Name)
	}
	return nil
}

// SearchTrendsParser reads the metered search-trends API response
type SearchTrendsParser struct {
	Log zerolog.Logger
}

// Parse implements Parser
func (p SearchTrendsParser) Parse(raw []byte) []trend.Trend {
	var lists map[string]json.RawMessage
	if err := json.Unmarshal(raw, &lists); err != nil {
		parseFailed(p.Log, "search-trends", err)
		return nil
	}

	for _, key := range searchTrendListKeys {
		entries := decodeSearchEntries(lists[key])
		if len(entries) == 0 {
			continue
		}

		trends := make([]trend.Trend, 0, searchTrendsLimit)
		for _, e := range entries {
			category := defaultSearchCategory
			if len(e.Categories) > 0 && strings.TrimSpace(string(e.Categories[0])) != "" {
				category = strings.TrimSpace(string(e.Categories[0]))
			}
			trends = append(trends, trend.NewTrend(e.Query, category, trend.SourceSearchTrends,
				SearchTrendsScoring.ScoreAt(len(trends))))
			if len(trends) == searchTrendsLimit {
				break
			}
		}
		return trends
	}

	p.Log.Debug().Str("parser", "search-trends").Msg("no trend list in payload")
	return nil
}

// decodeSearchEntries decodes a list entry by entry, skipping unusable ones
func decodeSearchEntries(list json.RawMessage) []searchTrendEntry {
	if len(list) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return nil
	}

	entries := make([]searchTrendEntry, 0, len(items))
	for _, item := range items {
		var e searchTrendEntry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		e.Query = strings.TrimSpace(e.Query)
		if e.Query == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// RedditFeed describes one "hot posts" listing and how much weight it carries
type RedditFeed struct {
	Name            string
	Subreddit       string
	MinUps          float64
	Limit           int
	Scoring         trend.Scoring
	DefaultCategory string
}

// The social listings in order of preference
var (
	RedditPopular = RedditFeed{
		Name:            "reddit-popular",
		Subreddit:       "popular",
		MinUps:          100,
		Limit:           8,
		Scoring:         trend.Scoring{Base: 90, Step: 5, Floor: 60},
		DefaultCategory: "Popular",
	}
	RedditTechnology = RedditFeed{
		Name:            "reddit-technology",
		Subreddit:       "technology",
		MinUps:          50,
		Limit:           5,
		Scoring:         trend.Scoring{Base: 85, Step: 4, Floor: 55},
		DefaultCategory: "Technology",
	}
	RedditWorldNews = RedditFeed{
		Name:            "reddit-worldnews",
		Subreddit:       "worldnews",
		MinUps:          200,
		Limit:           6,
		Scoring:         trend.Scoring{Base: 88, Step: 4, Floor: 65},
		DefaultCategory: "World News",
	}
)

// redditListing is the envelope of a listing response
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title     string  `json:"title"`
	Ups       float64 `json:"ups"`
	Subreddit string  `json:"subreddit"`
}

// RedditParser reads one listing, keeping posts with enough upvotes
type RedditParser struct {
	Feed RedditFeed
	Log  zerolog.Logger
}

// Parse implements Parser
func (p RedditParser) Parse(raw []byte) []trend.Trend {
	var listing redditListing
	if err := json.Unmarshal(raw, &listing); err != nil {
		parseFailed(p.Log, p.Feed.Name, err)
		return nil
	}

	trends := make([]trend.Trend, 0, p.Feed.Limit)
	for _, child := range listing.Data.Children {
		post := child.Data
		title := strings.TrimSpace(post.Title)
		if title == "" || post.Ups < p.Feed.MinUps {
			continue
		}

		category := p.Feed.DefaultCategory
		if s := strings.TrimSpace(post.Subreddit); s != "" {
			category = s
		}

		trends = append(trends, trend.NewTrend(title, category, trend.SourceSocial,
			p.Feed.Scoring.ScoreAt(len(trends))))
		if len(trends) >= p.Feed.Limit {
			break
		}
	}
	return trends
}

type repositoryResponse struct {
	Items []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"items"`
}

// RepositoryParser reads a trending-repositories search response
type RepositoryParser struct {
	Log zerolog.Logger
}

// Parse implements Parser
func (p RepositoryParser) Parse(raw []byte) []trend.Trend {
	var resp repositoryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		parseFailed(p.Log, "repository-trending", err)
		return nil
	}

	trends := make([]trend.Trend, 0, repositoryLimit)
	for _, item := range resp.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}

		title := name
		if desc := strings.TrimSpace(item.Description); desc != "" {
			title = name + ": " + desc
		}

		trends = append(trends, trend.NewTrend(truncateRunes(title, repositoryTitleRunes), defaultRepositoryCategory,
			trend.SourceSocial, RepositoryScoring.ScoreAt(len(trends))))
		if len(trends) == repositoryLimit {
			break
		}
	}
	return trends
}

// SyndicationParser reads RSS or Atom feeds, skipping items that only
// advertise the feed's own brand
type SyndicationParser struct {
	Brand           string
	Source          trend.Source
	DefaultCategory string
	Log             zerolog.Logger
}

// Parse implements Parser
func (p SyndicationParser) Parse(raw []byte) []trend.Trend {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		parseFailed(p.Log, "syndication", err)
		return nil
	}

	source := p.Source
	if source == "" {
		source = trend.SourceSearchTrends
	}
	defaultCategory := p.DefaultCategory
	if defaultCategory == "" {
		defaultCategory = defaultSyndicationCategory
	}

	trends := make([]trend.Trend, 0, syndicationLimit)
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		title := stripCDATA(item.Title)
		if title == "" || (p.Brand != "" && strings.Contains(title, p.Brand)) {
			continue
		}

		category := defaultCategory
		if len(item.Categories) > 0 && strings.TrimSpace(item.Categories[0]) != "" {
			category = strings.TrimSpace(item.Categories[0])
		}

		trends = append(trends, trend.NewTrend(title, category, source, SyndicationScoring.ScoreAt(len(trends))))
		if len(trends) == syndicationLimit {
			break
		}
	}
	return trends
}

func stripCDATA(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<![CDATA[")
	s = strings.TrimSuffix(s, "]]>")
	return strings.TrimSpace(s)
}

// truncateRunes cuts s to max runes, marking the cut with an ellipsis
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

func parseFailed(log zerolog.Logger, parser string, err error) {
	log.Warn().Str("parser", parser).Err(err).Msg("could not parse payload")
}
