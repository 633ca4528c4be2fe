package songdb

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req/v3"
)

// APIClient queries a song-data JSON API for tempo and key information.
type APIClient struct {
	baseURL string
	client  *req.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  req.C().SetTimeout(5 * time.Second),
	}
}

func (a *APIClient) Name() string {
	return SourceAPI
}

type apiSearchResponse struct {
	Songs []struct {
		Title  string  `json:"title"`
		Artist string  `json:"artist"`
		Tempo  float64 `json:"tempo"`
		Key    string  `json:"key_of"`
	} `json:"songs"`
}

type apiError struct {
	Message string `json:"message"`
}

func (a *APIClient) Search(ctx context.Context, title, artist string) ([]Match, error) {
	var result apiSearchResponse
	var errMsg apiError

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParamsAnyType(map[string]interface{}{
			"title":  title,
			"artist": artist,
		}).
		SetSuccessResult(&result).
		SetErrorResult(&errMsg).
		Get(a.baseURL + "/v1/search")
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	if resp.IsErrorState() {
		return nil, fmt.Errorf("search failed (%d): %s", resp.StatusCode, errMsg.Message)
	}

	matches := make([]Match, 0, len(result.Songs))
	for _, song := range result.Songs {
		matches = append(matches, Match{
			Title:  song.Title,
			Artist: song.Artist,
			BPM:    int(song.Tempo + 0.5),
			Key:    normalizeKey(song.Key),
			Source: SourceAPI,
		})
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no matches for %q", title)
	}
	return matches, nil
}
