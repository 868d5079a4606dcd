package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"kino/models"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"
)

// Client handles TMDB API interactions for browsing and detail data.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	language   string
	logger     *slog.Logger

	// Cache for trending and genre lookups to avoid hammering the API on
	// every dashboard render.
	cacheMu  sync.RWMutex
	cache    map[string]*cacheEntry
	cacheTTL time.Duration
}

type cacheEntry struct {
	payload   []byte
	fetchedAt time.Time
}

// Option adjusts client construction.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLanguage overrides the language sent on every request.
func WithLanguage(language string) Option {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
	}
}

// NewClient creates a TMDB API client.
func NewClient(apiKey string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		language:   defaultLanguage,
		logger:     logger,
		cache:      make(map[string]*cacheEntry),
		cacheTTL:   15 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listResponse is the common paged movie list envelope.
type listResponse struct {
	Results []models.CatalogMovie `json:"results"`
}

// Genre is a TMDB genre descriptor.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieDetails extends the list shape with the detail-only fields.
type MovieDetails struct {
	models.CatalogMovie
	Runtime          int     `json:"runtime"`
	Genres           []Genre `json:"genres"`
	Tagline          string  `json:"tagline"`
	Budget           int64   `json:"budget"`
	Revenue          int64   `json:"revenue"`
	VoteCount        int64   `json:"vote_count"`
	OriginalLanguage string  `json:"original_language"`
}

// CastMember is a credited actor.
type CastMember struct {
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// CrewMember is a credited crew person.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits holds cast and crew lists for a movie.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Video is a related clip, typically a YouTube trailer.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Review is a catalog-hosted review.
type Review struct {
	ID            string `json:"id"`
	Author        string `json:"author"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
	AuthorDetails struct {
		Rating *float64 `json:"rating"`
	} `json:"author_details"`
}

// Provider is a streaming/rental service listing.
type Provider struct {
	ProviderName string  `json:"provider_name"`
	LogoPath     *string `json:"logo_path"`
}

// RegionProviders groups providers by availability kind for one region.
type RegionProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

// Trending returns this week's trending movies.
func (c *Client) Trending(ctx context.Context) ([]models.CatalogMovie, error) {
	var out listResponse
	if err := c.getCached(ctx, "/trending/movie/week", nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Popular returns currently popular movies.
func (c *Client) Popular(ctx context.Context) ([]models.CatalogMovie, error) {
	var out listResponse
	if err := c.getCached(ctx, "/movie/popular", nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Search finds movies matching the query.
func (c *Client) Search(ctx context.Context, query string) ([]models.CatalogMovie, error) {
	var out listResponse
	if err := c.get(ctx, "/search/movie", url.Values{"query": {query}}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Details returns the full record for one movie.
func (c *Client) Details(ctx context.Context, id int64) (*MovieDetails, error) {
	var out MovieDetails
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Credits returns cast and crew for a movie.
func (c *Client) Credits(ctx context.Context, id int64) (*Credits, error) {
	var out Credits
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Videos returns related clips for a movie.
func (c *Client) Videos(ctx context.Context, id int64) ([]Video, error) {
	var out struct {
		Results []Video `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/videos", id), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Similar returns movies similar to the given one. This feeds the
// recommendation engine; failures surface to the caller untouched and are
// never retried here.
func (c *Client) Similar(ctx context.Context, id int64) ([]models.CatalogMovie, error) {
	var out listResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/similar", id), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Reviews returns catalog-hosted reviews for a movie.
func (c *Client) Reviews(ctx context.Context, id int64) ([]Review, error) {
	var out struct {
		Results []Review `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/reviews", id), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Providers returns watch providers per region for a movie.
func (c *Client) Providers(ctx context.Context, id int64) (map[string]RegionProviders, error) {
	var out struct {
		Results map[string]RegionProviders `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/watch/providers", id), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Genres returns the movie genre list.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.getCached(ctx, "/genre/movie/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// MoviesByGenre returns movies discovered for a genre id.
func (c *Client) MoviesByGenre(ctx context.Context, genreID int64) ([]models.CatalogMovie, error) {
	var out listResponse
	query := url.Values{"with_genres": {strconv.FormatInt(genreID, 10)}}
	if err := c.get(ctx, "/discover/movie", query, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// FirstTrailer picks the first YouTube trailer from a video list, or nil.
func FirstTrailer(videos []Video) *Video {
	for i, v := range videos {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return &videos[i]
		}
	}
	return nil
}

// get performs a GET against the API and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	payload, err := c.fetch(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getCached is get with a short TTL cache keyed by path.
func (c *Client) getCached(ctx context.Context, path string, query url.Values, dest any) error {
	c.cacheMu.RLock()
	if entry, ok := c.cache[path]; ok && time.Since(entry.fetchedAt) < c.cacheTTL {
		payload := entry.payload
		c.cacheMu.RUnlock()
		if err := json.Unmarshal(payload, dest); err != nil {
			return fmt.Errorf("decode cached response: %w", err)
		}
		return nil
	}
	c.cacheMu.RUnlock()

	payload, err := c.fetch(ctx, path, query)
	if err != nil {
		return err
	}

	c.cacheMu.Lock()
	c.cache[path] = &cacheEntry{payload: payload, fetchedAt: time.Now()}
	c.cacheMu.Unlock()

	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	query.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("catalog.unexpected_status", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return buf, nil
}
