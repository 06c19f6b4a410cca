package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mangashelf/mangashelf/internal/config"
)

const (
	GenresTable     = "genres"
	CategoriesTable = "categories"
	MangaTable      = "manga"
	SectionsTable   = "sections"
	PagesTable      = "pages"
	ChaptersTable   = "chapters"
	SlidersTable    = "sliders"
	NewsTable       = "news"
	ReviewsTable    = "reviews"

	idColumn          = "id"
	defaultCacheTTL   = 5 * time.Minute
	cleanupInterval   = 10 * time.Minute
	httpClientTimeout = 10 * time.Second

	returnMinimal        = "return=minimal"
	returnRepresentation = "return=representation"
)

var ErrNotFound = errors.New("record not found")

// Query is a PostgREST filter. Zero values are omitted.
type Query struct {
	Eq       map[string]string
	ILike    map[string]string
	In       map[string][]string
	Contains map[string]string
	Order    string
	Limit    int
	Offset   int
}

func (q Query) values() url.Values {
	values := url.Values{}
	values.Set("select", "*")
	for column, value := range q.Eq {
		values.Add(column, "eq."+value)
	}
	for column, value := range q.ILike {
		values.Add(column, "ilike.*"+value+"*")
	}
	for column, list := range q.In {
		values.Add(column, "in.("+strings.Join(list, ",")+")")
	}
	for column, value := range q.Contains {
		values.Add(column, "cs.{"+value+"}")
	}
	if q.Order != "" {
		values.Set("order", q.Order)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	return values
}

type SupabaseClient struct {
	supabaseConfig config.SupabaseConfig
	httpClient     *http.Client
	cache          *cache.Cache
}

func NewSupabaseClient(supabaseConfig config.SupabaseConfig) *SupabaseClient {
	ttl := time.Duration(supabaseConfig.CacheMinutes) * time.Minute
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &SupabaseClient{
		supabaseConfig: supabaseConfig,
		httpClient:     &http.Client{Timeout: httpClientTimeout},
		cache:          cache.New(ttl, cleanupInterval),
	}
}

// List decodes every row of table matching query into out, which must be a
// pointer to a slice.
func (s *SupabaseClient) List(ctx context.Context, table string, query Query, out any) error {
	apiURL := s.tableURL(table, query.values())

	if cached, found := s.cache.Get(apiURL); found {
		return json.Unmarshal(cached.([]byte), out)
	}

	body, err := s.do(ctx, http.MethodGet, apiURL, nil, "", http.StatusOK)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", table, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", table, err)
	}

	s.cache.Set(apiURL, body, cache.DefaultExpiration)
	return nil
}

// Get decodes the single row where column equals value into out.
func (s *SupabaseClient) Get(ctx context.Context, table, column, value string, out any) error {
	var rows []json.RawMessage
	if err := s.List(ctx, table, Query{Eq: map[string]string{column: value}, Limit: 1}, &rows); err != nil {
		return err
	}

	if len(rows) == 0 {
		return fmt.Errorf("%s with %s %q: %w", table, column, value, ErrNotFound)
	}

	if err := json.Unmarshal(rows[0], out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", table, err)
	}
	return nil
}

func (s *SupabaseClient) Insert(ctx context.Context, table string, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", table, err)
	}

	if _, err := s.do(ctx, http.MethodPost, s.tableURL(table, nil), payload, returnMinimal, http.StatusCreated); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	s.cache.Flush()
	return nil
}

// Update overwrites every writable column of the row with the given id.
// It returns ErrNotFound when no row has that id.
func (s *SupabaseClient) Update(ctx context.Context, table, id string, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", table, err)
	}

	filter := url.Values{idColumn: []string{"eq." + id}}
	body, err := s.do(ctx, http.MethodPatch, s.tableURL(table, filter), payload, returnRepresentation, http.StatusOK)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", table, id, err)
	}
	if err := requireRow(body); err != nil {
		return fmt.Errorf("failed to update %s %s: %w", table, id, err)
	}

	s.cache.Flush()
	return nil
}

// Delete returns ErrNotFound when no row has the given id.
func (s *SupabaseClient) Delete(ctx context.Context, table, id string) error {
	filter := url.Values{idColumn: []string{"eq." + id}}
	body, err := s.do(ctx, http.MethodDelete, s.tableURL(table, filter), nil, returnRepresentation, http.StatusOK)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", table, id, err)
	}
	if err := requireRow(body); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", table, id, err)
	}

	s.cache.Flush()
	return nil
}

// requireRow checks that a write returned at least one row.
func requireRow(body []byte) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// tableURL encodes the query with sorted keys so equal queries share a cache entry.
func (s *SupabaseClient) tableURL(table string, values url.Values) string {
	apiURL := fmt.Sprintf("%s/rest/v1/%s", strings.TrimRight(s.supabaseConfig.Url, "/"), table)
	if len(values) == 0 {
		return apiURL
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		list := append([]string(nil), values[key]...)
		sort.Strings(list)
		for _, value := range list {
			parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
		}
	}
	return apiURL + "?" + strings.Join(parts, "&")
}

func (s *SupabaseClient) do(ctx context.Context, method, apiURL string, payload []byte, prefer string, expected ...int) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", s.supabaseConfig.Key)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.supabaseConfig.Key))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	for _, status := range expected {
		if resp.StatusCode == status {
			return bodyBytes, nil
		}
	}
	return nil, fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, string(bodyBytes))
}
