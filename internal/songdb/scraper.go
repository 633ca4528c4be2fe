package songdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
)

// WebScraper extracts tempo and key data from song-data web pages. It
// is the fallback source when the JSON API has no answer.
type WebScraper struct {
	baseURL string
}

func NewWebScraper(baseURL string) *WebScraper {
	return &WebScraper{baseURL: baseURL}
}

func (w *WebScraper) Name() string {
	return SourceWeb
}

func (w *WebScraper) Search(ctx context.Context, title, artist string) ([]Match, error) {
	var matches []Match

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.Async(false),
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Debug("lookup page failed", "url", r.Request.URL.String(), "error", err)
	})

	c.OnHTML("div.song-card", func(e *colly.HTMLElement) {
		match := Match{
			Title:  strings.TrimSpace(e.ChildText("h3.song-title")),
			Artist: strings.TrimSpace(e.ChildText("p.song-artist")),
			BPM:    parseBPM(e.ChildText("span.bpm-value")),
			Key:    normalizeKey(e.ChildText("span.key-value")),
			Source: SourceWeb,
		}
		if match.BPM == 0 {
			// Some result layouts carry the tempo as an attribute
			// instead of a text node.
			e.DOM.Find("[data-bpm]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if v, ok := s.Attr("data-bpm"); ok {
					match.BPM = parseBPM(v)
					return false
				}
				return true
			})
		}
		if match.Title == "" || (match.BPM == 0 && match.Key == "") {
			return
		}
		matches = append(matches, match)
	})

	query := strings.TrimSpace(title + " " + artist)
	searchURL := fmt.Sprintf("%s/search?q=%s", w.baseURL, url.QueryEscape(query))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err := c.Visit(searchURL)
	if err != nil {
		for range 3 {
			time.Sleep(2 * time.Second)
			if err = c.Visit(searchURL); err == nil {
				break
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed after retry: %w", err)
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("no matches found on %s", w.baseURL)
	}
	return matches, nil
}

var (
	bpmPattern = regexp.MustCompile(`\d+`)
	keyPattern = regexp.MustCompile(`^([A-Ga-g])([#b♯♭]?)\s*(m|min|minor|maj|major)?$`)
)

// parseBPM pulls the first number out of a tempo string like "124 BPM"
// and rejects values outside the plausible range.
func parseBPM(raw string) int {
	match := bpmPattern.FindString(raw)
	if match == "" {
		return 0
	}
	bpm, err := strconv.Atoi(match)
	if err != nil || bpm < 20 || bpm > 300 {
		return 0
	}
	return bpm
}

// normalizeKey brings key spellings like "a minor" or "F♯" into the
// short form used on setlists ("Am", "F#"). Unrecognised input comes
// back empty rather than guessed.
func normalizeKey(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	m := keyPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	key := strings.ToUpper(m[1])
	switch m[2] {
	case "#", "♯":
		key += "#"
	case "b", "♭":
		key += "b"
	}
	switch strings.ToLower(m[3]) {
	case "m", "min", "minor":
		key += "m"
	}
	return key
}
