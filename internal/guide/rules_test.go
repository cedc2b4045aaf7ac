package guide

import (
	"fmt"
	"strings"
	"testing"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		title, description string
		want               Category
	}{
		{"Nightly News Report", "", CategoryNews},
		{"Championship Boxing", "", CategorySports},
		{"Coca-Cola Commercial", "", CategoryCommercial},
		{"Popeye Cartoon", "", CategoryCartoon},
		{"Educational Documentary", "", CategoryDocumentary},
		{"Feature Film", "", CategoryMovie},
		{"Comedy Show", "", CategoryTVShow},
		{"Silent Era Classic", "", CategoryEntertainment},
		{"News of the week", "a comedy series", CategoryNews},
		{"Late Night", "hilarious comedy NEWS roundup", CategoryNews},
		// substring matching: "ad" inside "Madness"
		{"Reefer Madness", "", CategoryCommercial},
	}
	for _, tt := range tests {
		if got := Categorize(tt.title, tt.description); got != tt.want {
			t.Errorf("Categorize(%q, %q) = %q, want %q", tt.title, tt.description, got, tt.want)
		}
	}
}

func TestCategoryRulesOrder(t *testing.T) {
	want := []Category{
		CategoryNews, CategorySports, CategoryCommercial, CategoryCartoon,
		CategoryDocumentary, CategoryMovie, CategoryTVShow,
	}
	if len(categoryRules) != len(want) {
		t.Fatalf("expected %d category rules, got %d", len(want), len(categoryRules))
	}
	for i, rule := range categoryRules {
		if rule.category != want[i] {
			t.Fatalf("rule %d is %q, want %q", i, rule.category, want[i])
		}
		for _, keyword := range rule.keywords {
			if got := Categorize(keyword, ""); got != rule.category {
				t.Errorf("keyword %q categorized as %q, want %q", keyword, got, rule.category)
			}
		}
	}
}

func TestChannelRulesEntryByEntry(t *testing.T) {
	tests := []struct {
		rule string
		in   channelInput
	}{
		{"news-cbs", channelInput{category: "news", creator: "cbs television"}},
		{"news-abc", channelInput{category: "entertainment", creator: "abc news archive"}},
		{"news-nbc", channelInput{category: "news", creator: "nbc"}},
		{"news-fox", channelInput{category: "news", creator: "fox movietone"}},
		{"news", channelInput{category: "news", creator: "pathe"}},
		{"movie", channelInput{category: "entertainment", tags: []string{"b-movie"}}},
		{"documentary", channelInput{category: "entertainment", creator: "pbs"}},
		{"comedy", channelInput{category: "sitcom"}},
		{"drama", channelInput{category: "drama"}},
		{"kids", channelInput{category: "children"}},
		{"sports", channelInput{category: "sports"}},
	}
	if len(tests) != len(channelRules) {
		t.Fatalf("expected a case per rule, have %d rules", len(channelRules))
	}
	for i, tt := range tests {
		if channelRules[i].name != tt.rule {
			t.Fatalf("rule %d is %q, want %q", i, channelRules[i].name, tt.rule)
		}
		matched := ""
		for _, rule := range channelRules {
			if rule.match(tt.in) {
				matched = rule.name
				break
			}
		}
		if matched != tt.rule {
			t.Errorf("input %+v matched %q first, want %q", tt.in, matched, tt.rule)
		}
	}
}

func TestChannelRulesStayInRange(t *testing.T) {
	for _, rule := range channelRules {
		if rule.channel < 2 || rule.channel > 42 {
			t.Errorf("rule %q assigns channel %d outside 2-42", rule.name, rule.channel)
		}
		if !strings.HasPrefix(rule.callsign, "W") && rule.callsign != "ESPN" {
			t.Errorf("rule %q has unexpected callsign %q", rule.name, rule.callsign)
		}
	}
}

func TestAssignChannel(t *testing.T) {
	tests := []struct {
		category Category
		creator  string
		tags     []string
		channel  uint8
		callsign string
	}{
		{CategoryNews, "CBS Television", nil, 19, "WCIO"},
		{CategoryEntertainment, "ABC News Archive", nil, 5, "WEWS"},
		{CategoryNews, "Pathe", nil, 5, "WEWS"},
		{CategoryMovie, "anyone", nil, 4, "WUAB"},
		{CategoryEntertainment, "anyone", []string{"B-Movie"}, 4, "WUAB"},
		{CategoryDocumentary, "anyone", nil, 25, "WVIZ"},
		{CategoryEntertainment, "Discovery Channel", nil, 25, "WVIZ"},
		{CategoryEntertainment, "anyone", []string{"Comedy"}, 8, "WJW"},
		{CategorySports, "anyone", nil, 35, "ESPN"},
		{CategoryEntertainment, "Prelinger Archives", nil, 15, "WTWG"},
		{CategoryCartoon, "", nil, 2, "WAAA"},
	}
	for _, tt := range tests {
		channel, callsign := AssignChannel(tt.category, tt.creator, tt.tags)
		if channel != tt.channel || callsign != tt.callsign {
			t.Errorf("AssignChannel(%q, %q, %q) = (%d, %q), want (%d, %q)",
				tt.category, tt.creator, tt.tags, channel, callsign, tt.channel, tt.callsign)
		}
	}
}

func TestFallbackChannelRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		creator := fmt.Sprintf("synthetic creator %d", i)
		channel, callsign := FallbackChannel(creator)
		if channel < 2 || channel > 41 {
			t.Fatalf("FallbackChannel(%q) channel %d outside [2, 41]", creator, channel)
		}
		if len(callsign) != 4 || callsign[0] != 'W' {
			t.Fatalf("FallbackChannel(%q) callsign %q", creator, callsign)
		}
		for _, r := range callsign[1:] {
			if r < 'A' || r > 'Z' {
				t.Fatalf("FallbackChannel(%q) callsign %q has non-letter", creator, callsign)
			}
		}
		again, againCallsign := FallbackChannel(creator)
		if again != channel || againCallsign != callsign {
			t.Fatalf("FallbackChannel(%q) is not deterministic", creator)
		}
	}
}
