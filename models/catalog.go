package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mangashelf/mangashelf/utils"
)

// Document is implemented by every record the admin panel can write.
type Document interface {
	// Prepare fills server-side fields before the record is written.
	Prepare(now time.Time, creating bool)
	Validate() error
	SetId(id string)
}

var ErrInvalidDocument = errors.New("invalid document")

// Ref is an optional reference to another record. The empty Ref is written as null.
type Ref string

func (r Ref) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ""
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*r = Ref(id)
	return nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidDocument, reason)
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

// ensureSlug falls back to the id when the title has no ASCII letters or digits.
func ensureSlug(slug *string, from, id string) {
	if strings.TrimSpace(*slug) == "" {
		*slug = utils.Slugify(from)
	} else {
		*slug = utils.Slugify(*slug)
	}
	if *slug == "" {
		*slug = id
	}
}

func requireSlug(kind, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return invalid(kind + " slug is required")
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func stamp(created, updated **time.Time, now time.Time, creating bool) {
	if creating {
		*created = &now
	}
	if updated != nil {
		*updated = &now
	}
}

type Genre struct {
	Id          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func (g *Genre) Prepare(now time.Time, creating bool) {
	ensureID(&g.Id)
	ensureSlug(&g.Slug, g.Name, g.Id)
	stamp(&g.CreatedAt, nil, now, creating)
}

func (g *Genre) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return invalid("genre name is required")
	}
	return requireSlug("genre", g.Slug)
}

type Category struct {
	Id          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func (c *Category) Prepare(now time.Time, creating bool) {
	ensureID(&c.Id)
	ensureSlug(&c.Slug, c.Name, c.Id)
	stamp(&c.CreatedAt, nil, now, creating)
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("category name is required")
	}
	return requireSlug("category", c.Slug)
}

type Manga struct {
	Id          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	AltTitles   []string   `json:"alt_titles"`
	Author      string     `json:"author"`
	Description string     `json:"description"`
	CoverUrl    string     `json:"cover_url"`
	Status      string     `json:"status"`
	GenreIds    []string   `json:"genre_ids"`
	CategoryIds []string   `json:"category_ids"`
	Year        int        `json:"year"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

const (
	MangaStatusOngoing   = "ongoing"
	MangaStatusCompleted = "completed"
	MangaStatusHiatus    = "hiatus"
)

func (m *Manga) Prepare(now time.Time, creating bool) {
	ensureID(&m.Id)
	ensureSlug(&m.Slug, m.Title, m.Id)
	if m.Status == "" {
		m.Status = MangaStatusOngoing
	}
	m.AltTitles = nonNil(m.AltTitles)
	m.GenreIds = nonNil(m.GenreIds)
	m.CategoryIds = nonNil(m.CategoryIds)
	stamp(&m.CreatedAt, &m.UpdatedAt, now, creating)
}

func (m *Manga) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return invalid("manga title is required")
	}
	switch m.Status {
	case "", MangaStatusOngoing, MangaStatusCompleted, MangaStatusHiatus:
	default:
		return invalid("unknown manga status " + m.Status)
	}
	return requireSlug("manga", m.Slug)
}

// Section is a titled block of manga shown on the homepage.
type Section struct {
	Id        string     `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Position  int        `json:"position"`
	MangaIds  []string   `json:"manga_ids"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (s *Section) Prepare(now time.Time, creating bool) {
	ensureID(&s.Id)
	ensureSlug(&s.Slug, s.Title, s.Id)
	if s.MangaIds == nil {
		s.MangaIds = []string{}
	}
	stamp(&s.CreatedAt, nil, now, creating)
}

func (s *Section) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return invalid("section title is required")
	}
	return requireSlug("section", s.Slug)
}

// Page is a free-form page, optionally tied to a manga, whose chapters carry images.
type Page struct {
	Id        string     `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	MangaId   Ref        `json:"manga_id"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (p *Page) Prepare(now time.Time, creating bool) {
	ensureID(&p.Id)
	ensureSlug(&p.Slug, p.Title, p.Id)
	stamp(&p.CreatedAt, &p.UpdatedAt, now, creating)
}

func (p *Page) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return invalid("page title is required")
	}
	return requireSlug("page", p.Slug)
}

type Chapter struct {
	Id        string     `json:"id"`
	PageId    Ref        `json:"page_id"`
	MangaId   Ref        `json:"manga_id"`
	Number    float64    `json:"number"`
	Title     string     `json:"title"`
	ImageUrls []string   `json:"image_urls"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (c *Chapter) Prepare(now time.Time, creating bool) {
	ensureID(&c.Id)
	if c.ImageUrls == nil {
		c.ImageUrls = []string{}
	}
	stamp(&c.CreatedAt, nil, now, creating)
}

func (c *Chapter) Validate() error {
	if c.PageId == "" && c.MangaId == "" {
		return invalid("chapter must belong to a page or a manga")
	}
	if c.Number < 0 {
		return invalid("chapter number must not be negative")
	}
	return nil
}

type Slider struct {
	Id        string     `json:"id"`
	Title     string     `json:"title"`
	ImageUrl  string     `json:"image_url"`
	LinkUrl   string     `json:"link_url"`
	Position  int        `json:"position"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (s *Slider) Prepare(now time.Time, creating bool) {
	ensureID(&s.Id)
	stamp(&s.CreatedAt, nil, now, creating)
}

func (s *Slider) Validate() error {
	if strings.TrimSpace(s.ImageUrl) == "" {
		return invalid("slider image url is required")
	}
	return nil
}

type News struct {
	Id          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	ImageUrl    string     `json:"image_url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func (n *News) Prepare(now time.Time, creating bool) {
	ensureID(&n.Id)
	ensureSlug(&n.Slug, n.Title, n.Id)
	if creating && n.PublishedAt == nil {
		n.PublishedAt = &now
	}
	n.UpdatedAt = &now
}

func (n *News) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return invalid("news title is required")
	}
	if strings.TrimSpace(n.Body) == "" {
		return invalid("news body is required")
	}
	return requireSlug("news", n.Slug)
}

type Review struct {
	Id        string     `json:"id"`
	MangaId   string     `json:"manga_id"`
	Author    string     `json:"author"`
	Body      string     `json:"body"`
	Rating    int        `json:"rating"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (r *Review) Prepare(now time.Time, creating bool) {
	ensureID(&r.Id)
	r.Body = strings.TrimSpace(r.Body)
	if r.Author == "" {
		r.Author = "Anonymous"
	}
	stamp(&r.CreatedAt, nil, now, creating)
}

func (r *Review) Validate() error {
	if r.MangaId == "" {
		return invalid("review must reference a manga")
	}
	if strings.TrimSpace(r.Body) == "" {
		return invalid("review body is required")
	}
	if r.Rating != 0 && (r.Rating < 1 || r.Rating > 5) {
		return invalid("review rating must be between 1 and 5")
	}
	return nil
}

// ReviewBodies returns the review texts in their stored order.
func ReviewBodies(reviews []Review) []string {
	bodies := make([]string, 0, len(reviews))
	for _, review := range reviews {
		bodies = append(bodies, review.Body)
	}
	return bodies
}

func (g *Genre) SetId(id string)    { g.Id = id }
func (c *Category) SetId(id string) { c.Id = id }
func (m *Manga) SetId(id string)    { m.Id = id }
func (s *Section) SetId(id string)  { s.Id = id }
func (p *Page) SetId(id string)     { p.Id = id }
func (c *Chapter) SetId(id string)  { c.Id = id }
func (s *Slider) SetId(id string)   { s.Id = id }
func (n *News) SetId(id string)     { n.Id = id }
func (r *Review) SetId(id string)   { r.Id = id }
