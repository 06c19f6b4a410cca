package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mangashelf/mangashelf/internal/utils"
	"github.com/mangashelf/mangashelf/models"
	"github.com/mangashelf/mangashelf/supabase"
	strutils "github.com/mangashelf/mangashelf/utils"
)

const (
	defaultPageSize = 24
	maxPageSize     = 100
	homeNewsCount   = 5
)

type CatalogHandler struct {
	store  CatalogStore
	logger *zap.Logger
}

func NewCatalogHandler(store CatalogStore, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		store:  store,
		logger: logger,
	}
}

type homeSection struct {
	models.Section
	Manga []models.Manga `json:"manga"`
}

type homeResponse struct {
	Sliders  []models.Slider `json:"sliders"`
	Sections []homeSection   `json:"sections"`
	News     []models.News   `json:"news"`
}

func (h *CatalogHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	response := homeResponse{
		Sliders:  []models.Slider{},
		Sections: []homeSection{},
		News:     []models.News{},
	}

	if err := h.store.List(ctx, supabase.SlidersTable, supabase.Query{Order: "position.asc"}, &response.Sliders); err != nil {
		internalError(c, h.logger, "failed to list sliders", err)
		return
	}

	var sections []models.Section
	if err := h.store.List(ctx, supabase.SectionsTable, supabase.Query{Order: "position.asc"}, &sections); err != nil {
		internalError(c, h.logger, "failed to list sections", err)
		return
	}

	mangaById, err := h.mangaByIds(c, sections)
	if err != nil {
		internalError(c, h.logger, "failed to resolve section manga", err)
		return
	}

	for _, section := range sections {
		resolved := homeSection{Section: section, Manga: []models.Manga{}}
		for _, id := range section.MangaIds {
			if manga, ok := mangaById[id]; ok {
				resolved.Manga = append(resolved.Manga, manga)
			}
		}
		response.Sections = append(response.Sections, resolved)
	}

	if err := h.store.List(ctx, supabase.NewsTable, supabase.Query{Order: "published_at.desc", Limit: homeNewsCount}, &response.News); err != nil {
		internalError(c, h.logger, "failed to list news", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CatalogHandler) mangaByIds(c *gin.Context, sections []models.Section) (map[string]models.Manga, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, section := range sections {
		for _, id := range section.MangaIds {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	mangaById := make(map[string]models.Manga, len(ids))
	if len(ids) == 0 {
		return mangaById, nil
	}

	var manga []models.Manga
	query := supabase.Query{In: map[string][]string{"id": ids}}
	if err := h.store.List(c.Request.Context(), supabase.MangaTable, query, &manga); err != nil {
		return nil, err
	}
	for _, m := range manga {
		mangaById[m.Id] = m
	}
	return mangaById, nil
}

// ListManga searches by title and filters by genre or category slug.
func (h *CatalogHandler) ListManga(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil || limit < 1 {
		utils.ProcessBadRequestMessage(c, "limit must be a positive integer")
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		utils.ProcessBadRequestMessage(c, "offset must be a non-negative integer")
		return
	}

	query := supabase.Query{Order: "created_at.desc", Limit: limit, Offset: offset}
	if q := strutils.CompactSpaces(c.Query("q")); q != "" {
		query.ILike = map[string]string{"title": q}
	}

	ctx := c.Request.Context()
	contains := make(map[string]string)
	if slug := c.Query("genre"); slug != "" {
		var genre models.Genre
		if err := h.store.Get(ctx, supabase.GenresTable, "slug", slug, &genre); err != nil {
			lookupError(c, h.logger, "failed to resolve genre", err)
			return
		}
		contains["genre_ids"] = genre.Id
	}
	if slug := c.Query("category"); slug != "" {
		var category models.Category
		if err := h.store.Get(ctx, supabase.CategoriesTable, "slug", slug, &category); err != nil {
			lookupError(c, h.logger, "failed to resolve category", err)
			return
		}
		contains["category_ids"] = category.Id
	}
	if len(contains) > 0 {
		query.Contains = contains
	}

	manga := []models.Manga{}
	if err := h.store.List(ctx, supabase.MangaTable, query, &manga); err != nil {
		internalError(c, h.logger, "failed to list manga", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"manga": manga, "limit": limit, "offset": offset})
}

func (h *CatalogHandler) ListGenres(c *gin.Context) {
	genres := []models.Genre{}
	if err := h.store.List(c.Request.Context(), supabase.GenresTable, supabase.Query{Order: "name.asc"}, &genres); err != nil {
		internalError(c, h.logger, "failed to list genres", err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories := []models.Category{}
	if err := h.store.List(c.Request.Context(), supabase.CategoriesTable, supabase.Query{Order: "name.asc"}, &categories); err != nil {
		internalError(c, h.logger, "failed to list categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) ListNews(c *gin.Context) {
	news := []models.News{}
	if err := h.store.List(c.Request.Context(), supabase.NewsTable, supabase.Query{Order: "published_at.desc"}, &news); err != nil {
		internalError(c, h.logger, "failed to list news", err)
		return
	}
	c.JSON(http.StatusOK, news)
}

func (h *CatalogHandler) GetNews(c *gin.Context) {
	var news models.News
	if err := h.store.Get(c.Request.Context(), supabase.NewsTable, "slug", c.Param("slug"), &news); err != nil {
		lookupError(c, h.logger, "failed to get news", err)
		return
	}
	c.JSON(http.StatusOK, news)
}

// GetPage returns a custom page with its chapters in reading order.
func (h *CatalogHandler) GetPage(c *gin.Context) {
	ctx := c.Request.Context()

	var page models.Page
	if err := h.store.Get(ctx, supabase.PagesTable, "slug", c.Param("slug"), &page); err != nil {
		lookupError(c, h.logger, "failed to get page", err)
		return
	}

	chapters := []models.Chapter{}
	query := supabase.Query{Eq: map[string]string{"page_id": page.Id}, Order: "number.asc"}
	if err := h.store.List(ctx, supabase.ChaptersTable, query, &chapters); err != nil {
		internalError(c, h.logger, "failed to list chapters", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page, "chapters": chapters})
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
