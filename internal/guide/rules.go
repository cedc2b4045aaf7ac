package guide

import "strings"

// Category is the programme genre shown in the guide.
type Category string

const (
	CategoryNews          Category = "News"
	CategorySports        Category = "Sports"
	CategoryCommercial    Category = "Commercial"
	CategoryCartoon       Category = "Cartoon"
	CategoryDocumentary   Category = "Documentary"
	CategoryMovie         Category = "Movie"
	CategoryTVShow        Category = "TV Show"
	CategoryEntertainment Category = "Entertainment"
)

type categoryRule struct {
	category Category
	keywords []string
}

// categoryRules are evaluated in order; the first rule with a keyword
// contained in the lowercased title and description wins.
var categoryRules = []categoryRule{
	{CategoryNews, []string{"news", "report", "update"}},
	{CategorySports, []string{"sport", "game", "match", "championship"}},
	{CategoryCommercial, []string{"commercial", "ad", "advertisement"}},
	{CategoryCartoon, []string{"cartoon", "animation"}},
	{CategoryDocumentary, []string{"documentary", "educational"}},
	{CategoryMovie, []string{"movie", "film"}},
	{CategoryTVShow, []string{"show", "series", "episode"}},
}

// Categorize assigns a category from keywords in the title and description.
// Matching is by substring, so "ad" also matches inside longer words.
func Categorize(title, description string) Category {
	combined := strings.ToLower(title + " " + description)
	for _, rule := range categoryRules {
		if containsAny(combined, rule.keywords...) {
			return rule.category
		}
	}
	return CategoryEntertainment
}

// channelInput is the lowercased view a channel rule matches against.
type channelInput struct {
	category string
	creator  string
	tags     []string
}

func (in channelInput) news() bool {
	return strings.Contains(in.category, "news") || strings.Contains(in.creator, "news")
}

func (in channelInput) tagContains(keyword string) bool {
	for _, tag := range in.tags {
		if strings.Contains(tag, keyword) {
			return true
		}
	}
	return false
}

type channelRule struct {
	name     string
	match    func(channelInput) bool
	channel  uint8
	callsign string
}

// channelRules are evaluated in order; the first match wins. Items matching
// none fall back to the creator hash.
var channelRules = []channelRule{
	{"news-cbs", func(in channelInput) bool { return in.news() && strings.Contains(in.creator, "cbs") }, 19, "WCIO"},
	{"news-abc", func(in channelInput) bool { return in.news() && strings.Contains(in.creator, "abc") }, 5, "WEWS"},
	{"news-nbc", func(in channelInput) bool { return in.news() && strings.Contains(in.creator, "nbc") }, 3, "WKYC"},
	{"news-fox", func(in channelInput) bool { return in.news() && strings.Contains(in.creator, "fox") }, 8, "WJW"},
	{"news", channelInput.news, 5, "WEWS"},
	{"movie", func(in channelInput) bool {
		return containsAny(in.category, "movie", "film") || in.tagContains("movie")
	}, 4, "WUAB"},
	{"documentary", func(in channelInput) bool {
		return strings.Contains(in.category, "documentary") || containsAny(in.creator, "pbs", "discovery")
	}, 25, "WVIZ"},
	{"comedy", func(in channelInput) bool {
		return containsAny(in.category, "comedy", "sitcom") || in.tagContains("comedy")
	}, 8, "WJW"},
	{"drama", func(in channelInput) bool { return containsAny(in.category, "drama", "series") }, 3, "WKYC"},
	{"kids", func(in channelInput) bool { return containsAny(in.category, "kids", "animation", "children") }, 42, "WUAB"},
	{"sports", func(in channelInput) bool { return strings.Contains(in.category, "sport") }, 35, "ESPN"},
}

// AssignChannel picks the channel number and callsign for a programme.
func AssignChannel(category Category, creator string, tags []string) (uint8, string) {
	in := channelInput{
		category: strings.ToLower(string(category)),
		creator:  strings.ToLower(creator),
		tags:     make([]string, len(tags)),
	}
	for i, tag := range tags {
		in.tags[i] = strings.ToLower(tag)
	}
	for _, rule := range channelRules {
		if rule.match(in) {
			return rule.channel, rule.callsign
		}
	}
	return FallbackChannel(creator)
}

// FallbackChannel derives a channel in [2, 41] and a W-prefixed callsign from
// the 8-bit byte sum of the creator.
func FallbackChannel(creator string) (uint8, string) {
	h := Sum8(creator)
	channel := h%40 + 2
	callsign := []byte{'W', 'A' + h%26, 'A' + (h/2)%26, 'A' + (h/3)%26}
	return channel, string(callsign)
}

func containsAny(s string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
