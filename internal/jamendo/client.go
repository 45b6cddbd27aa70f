// Package jamendo is a client for the Jamendo tracks API, used to
// augment library searches with externally hosted tracks. Results are
// ephemeral: they are never persisted and each search hits the API again.
package jamendo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"fermata/internal/apperr"
	"fermata/pkg/models"
)

// BrandName is shown as the uploader of catalog-sourced tracks.
const BrandName = "Jamendo"

// Client is an HTTP client for the Jamendo tracks API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	logger     *logrus.Logger
}

// NewClient constructs a new catalog client.
func NewClient(httpClient *http.Client, baseURL, clientID string, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		logger:     logger,
	}
}

// jamendoTrack is the wire shape of a track in API responses.
type jamendoTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ArtistName string `json:"artist_name"`
	Audio      string `json:"audio"`
	Image      string `json:"image"`
	Duration   int    `json:"duration"`
}

// tracksResponse is the envelope of the tracks endpoint.
type tracksResponse struct {
	Results []jamendoTrack `json:"results"`
}

// Search queries tracks by name, ordered by popularity, capped at limit.
// Any failure (transport, non-2xx, malformed body) degrades to an empty
// result list; the library listing must never break because the catalog
// is down.
func (c *Client) Search(ctx context.Context, query string, limit int) []models.Song {
	params := url.Values{}
	params.Set("namesearch", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "popularity_total")

	tracks, err := c.fetchTracks(ctx, params)
	if err != nil {
		c.logger.WithError(err).WithField("query", query).Warn("Catalog search failed, returning no results")
		return nil
	}

	songs := make([]models.Song, 0, len(tracks))
	for _, t := range tracks {
		songs = append(songs, mapTrack(t))
	}
	return songs
}

// Track fetches a single track by its catalog identifier. Every failure
// mode, including an empty result, is a not-found error.
func (c *Client) Track(ctx context.Context, id string) (*models.Song, error) {
	params := url.Values{}
	params.Set("id", id)

	tracks, err := c.fetchTracks(ctx, params)
	if err != nil {
		c.logger.WithError(err).WithField("track_id", id).Warn("Catalog track fetch failed")
		return nil, apperr.Wrap(apperr.KindNotFound, "song not found", err)
	}
	if len(tracks) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "song not found")
	}

	song := mapTrack(tracks[0])
	return &song, nil
}

// fetchTracks performs a GET on the tracks endpoint with common params.
func (c *Client) fetchTracks(ctx context.Context, params url.Values) ([]jamendoTrack, error) {
	params.Set("client_id", c.clientID)
	params.Set("format", "json")

	reqURL := c.baseURL + "/tracks/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.New(apperr.KindUnavailable, "catalog API returned status "+strconv.Itoa(resp.StatusCode))
	}

	var body tracksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	return body.Results, nil
}

// mapTrack converts a wire track to the shared song shape.
func mapTrack(t jamendoTrack) models.Song {
	return models.Song{
		Title:    t.Name,
		Artist:   t.ArtistName,
		Uploader: BrandName,
		Duration: t.Duration,
		Source:   models.SourceJamendo,
		TrackID:  t.ID,
		AudioURL: t.Audio,
		ArtURL:   t.Image,
	}
}
