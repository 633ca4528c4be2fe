package songdb

import (
	"context"
	"fmt"
)

// Lookup finds tempo and key candidates for a song. Results are
// suggestions for the user to confirm, never written to a setlist
// directly.
type Lookup interface {
	Search(ctx context.Context, title, artist string) ([]Match, error)
	Name() string
}

// Match is a single candidate from one source.
type Match struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
	BPM    int    `json:"bpm,omitempty"`
	Key    string `json:"key,omitempty"`
	Source string `json:"source"`
}

const (
	SourceAPI = "songdata-api"
	SourceWeb = "songdata-web"
)

// CompositeLookup tries multiple sources in sequence until one returns
// matches.
type CompositeLookup struct {
	sources []Lookup
}

func (c *CompositeLookup) Name() string {
	return "composite"
}

// NewLookup builds the default lookup chain: the JSON API first, the
// web scraper as fallback. Sources without a configured URL are left
// out; with nothing configured the lookup is disabled and every search
// errors.
func NewLookup(apiURL, webURL string) *CompositeLookup {
	var sources []Lookup
	if apiURL != "" {
		sources = append(sources, NewAPIClient(apiURL))
	}
	if webURL != "" {
		sources = append(sources, NewWebScraper(webURL))
	}
	return &CompositeLookup{sources: sources}
}

func (c *CompositeLookup) Search(ctx context.Context, title, artist string) ([]Match, error) {
	if len(c.sources) == 0 {
		return nil, fmt.Errorf("no lookup sources configured")
	}
	var errors []error
	for _, source := range c.sources {
		matches, err := source.Search(ctx, title, artist)
		if err == nil && len(matches) > 0 {
			return matches, nil
		}
		if err != nil {
			errors = append(errors, fmt.Errorf("%s: %v", source.Name(), err))
		}
	}
	return nil, fmt.Errorf("all lookup sources failed: %v", errors)
}
