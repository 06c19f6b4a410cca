package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"github.com/mangashelf/mangashelf/internal/utils"
	"github.com/mangashelf/mangashelf/models"
	"github.com/mangashelf/mangashelf/supabase"
	strutils "github.com/mangashelf/mangashelf/utils"
)

// SummaryUnavailableMessage replaces the pros and cons whenever the summarizer fails.
const SummaryUnavailableMessage = "Could not generate review summary at this time"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
}).ParseFS(templateFS, "templates/*.html"))

type MangaHandler struct {
	store      CatalogStore
	summarizer ReviewSummarizer
	logger     *zap.Logger
}

func NewMangaHandler(store CatalogStore, summarizer ReviewSummarizer, logger *zap.Logger) *MangaHandler {
	return &MangaHandler{
		store:      store,
		summarizer: summarizer,
		logger:     logger,
	}
}

type mangaDetail struct {
	Manga        models.Manga            `json:"manga"`
	Genres       []models.Genre          `json:"genres"`
	Chapters     []models.Chapter        `json:"chapters"`
	Reviews      []models.Review         `json:"reviews"`
	Summary      *models.SummarizeResult `json:"summary,omitempty"`
	SummaryError string                  `json:"summaryError,omitempty"`
}

type reviewPayload struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	Rating int    `json:"rating"`
}

func (h *MangaHandler) GetManga(c *gin.Context) {
	detail, err := h.loadDetail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		lookupError(c, h.logger, "failed to load manga", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// RenderManga serves the detail page. Reviews render even when the summary failed.
func (h *MangaHandler) RenderManga(c *gin.Context) {
	detail, err := h.loadDetail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		lookupError(c, h.logger, "failed to load manga", err)
		return
	}

	c.Render(http.StatusOK, render.HTML{
		Template: pageTemplates,
		Name:     "manga.html",
		Data:     detail,
	})
}

func (h *MangaHandler) SubmitReview(c *gin.Context) {
	ctx := c.Request.Context()

	var payload reviewPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.ProcessGenericBadRequest(c)
		return
	}

	var manga models.Manga
	if err := h.store.Get(ctx, supabase.MangaTable, "slug", c.Param("slug"), &manga); err != nil {
		lookupError(c, h.logger, "failed to load manga", err)
		return
	}

	review := models.Review{
		MangaId: manga.Id,
		Author:  strutils.CompactSpaces(payload.Author),
		Body:    payload.Body,
		Rating:  payload.Rating,
	}
	review.Prepare(time.Now().UTC(), true)
	if err := review.Validate(); err != nil {
		utils.ProcessBadRequestMessage(c, err.Error())
		return
	}

	if err := h.store.Insert(ctx, supabase.ReviewsTable, review); err != nil {
		internalError(c, h.logger, "failed to insert review", err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *MangaHandler) loadDetail(ctx context.Context, slug string) (mangaDetail, error) {
	detail := mangaDetail{
		Genres:   []models.Genre{},
		Chapters: []models.Chapter{},
		Reviews:  []models.Review{},
	}

	if err := h.store.Get(ctx, supabase.MangaTable, "slug", slug, &detail.Manga); err != nil {
		return detail, err
	}

	if len(detail.Manga.GenreIds) > 0 {
		query := supabase.Query{In: map[string][]string{"id": detail.Manga.GenreIds}, Order: "name.asc"}
		if err := h.store.List(ctx, supabase.GenresTable, query, &detail.Genres); err != nil {
			return detail, err
		}
	}

	byManga := map[string]string{"manga_id": detail.Manga.Id}
	if err := h.store.List(ctx, supabase.ChaptersTable, supabase.Query{Eq: byManga, Order: "number.asc"}, &detail.Chapters); err != nil {
		return detail, err
	}
	if err := h.store.List(ctx, supabase.ReviewsTable, supabase.Query{Eq: byManga, Order: "created_at.asc"}, &detail.Reviews); err != nil {
		return detail, err
	}

	summary, err := h.summarizer.SummarizeReviews(ctx, models.SummarizeRequest{
		MangaTitle: detail.Manga.Title,
		Reviews:    models.ReviewBodies(detail.Reviews),
	})
	if err != nil {
		h.logger.Warn("review summary unavailable",
			zap.String("slug", slug),
			zap.Int("reviews", len(detail.Reviews)),
			zap.Error(err))
		detail.SummaryError = SummaryUnavailableMessage
		return detail, nil
	}

	detail.Summary = &summary
	return detail, nil
}
