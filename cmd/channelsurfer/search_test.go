package main

import (
	"strings"
	"testing"
)

func TestSearchCommandListsResults(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"search", "reefer", "madness"}, env.configPath, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "Searching for: reefer madness")
	requireContains(t, out, "Found 2 results (showing 2)")
	requireContains(t, out, "[1] Reefer Madness (1936) 734 MB Movies")
	requireContains(t, out, "Creator: Dwain Esper et al  ID: reefer_madness  Downloads: 123,456")
	requireContains(t, out, "A cautionary tale.")
	requireContains(t, out, "[2] (No Title) (Unknown) ~15MB (est.)")
	requireContains(t, out, "channelsurfer download <identifier>")
	if env.fake.Requests("/advancedsearch.php") != 1 {
		t.Fatalf("expected one search request")
	}
}

func TestSearchCommandNoResults(t *testing.T) {
	env := setupCLITestEnv(t)
	env.fake.SetSearchBody(`{"response":{"numFound":0,"start":0,"docs":[]}}`)

	out, _, err := runCLI(t, []string{"search", "nothing"}, env.configPath, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "No results found for query: nothing")
	if strings.Contains(out, "To download a video") {
		t.Fatalf("download hint should not be shown without results: %q", out)
	}
}

func TestSearchCommandRecoversMalformedPayload(t *testing.T) {
	env := setupCLITestEnv(t)
	env.fake.SetSearchBody(`{"response":{"docs":[{"identifier":"reefer_madness","title":"Reefer Madness"}]}}` + "\n<!-- served from cache -->")

	out, _, err := runCLI(t, []string{"search", "reefer"}, env.configPath, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "showing the items that could be recovered")
	requireContains(t, out, "ID: reefer_madness")
}

func TestSearchCommandAPIError(t *testing.T) {
	env := setupCLITestEnv(t)
	env.fake.SetSearchBody(`{"error":"Invalid query"}`)

	_, _, err := runCLI(t, []string{"search", "((("}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "Invalid query") {
		t.Fatalf("expected api error carrying the message, got %v", err)
	}
}
