package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default configuration values.
const (
	DefaultLanguage = "ar"
	DefaultTimeout  = 30 * time.Second
)

// WikipediaConfig holds configuration for the Wikipedia client.
type WikipediaConfig struct {
	// Language selects the Wikipedia edition (default: "ar").
	Language string

	// BaseURL overrides the API endpoint. Mostly useful for tests.
	BaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Wikipedia implements KnowledgeSource against the MediaWiki action API.
type Wikipedia struct {
	client  *http.Client
	baseURL string
}

// NewWikipedia creates a Wikipedia knowledge source.
func NewWikipedia(cfg WikipediaConfig) *Wikipedia {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", cfg.Language)
	}

	return &Wikipedia{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: baseURL,
	}
}

// Name identifies the source for citation labels.
func (w *Wikipedia) Name() string {
	return "Wikipedia"
}

// searchResponse is the action=query list=search response format.
type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
	Error *apiError `json:"error,omitempty"`
}

// extractResponse is the action=query prop=extracts response format.
type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Search returns candidate article titles for a subject name.
func (w *Wikipedia) Search(ctx context.Context, name string) ([]string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {name},
		"srlimit":  {"5"},
		"format":   {"json"},
	}

	var resp searchResponse
	if err := w.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceFetch, resp.Error.Info)
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, hit := range resp.Query.Search {
		titles = append(titles, hit.Title)
	}
	return titles, nil
}

// Fetch returns the full plain text of an article.
func (w *Wikipedia) Fetch(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"titles":      {title},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"format":      {"json"},
	}

	var resp extractResponse
	if err := w.get(ctx, params, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrSourceFetch, resp.Error.Info)
	}

	for _, page := range resp.Query.Pages {
		if page.Extract != "" {
			return page.Extract, nil
		}
	}
	return "", nil
}

// get performs an API request and decodes the JSON response into out.
func (w *Wikipedia) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceFetch, err)
	}
	req.Header.Set("User-Agent", "historical-characters-rag/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrSourceFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrSourceFetch, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrSourceFetch, err)
	}
	return nil
}
