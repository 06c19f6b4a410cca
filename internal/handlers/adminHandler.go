package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mangashelf/mangashelf/internal/utils"
	"github.com/mangashelf/mangashelf/models"
	"github.com/mangashelf/mangashelf/supabase"
)

const adminPasswordHeader = "X-Admin-Password"

// AdminAuthMiddleware rejects every request when no password is configured.
func AdminAuthMiddleware(password string) gin.HandlerFunc {
	expected := []byte(password)
	return func(c *gin.Context) {
		provided := []byte(c.GetHeader(adminPasswordHeader))
		if len(expected) == 0 || subtle.ConstantTimeCompare(provided, expected) != 1 {
			utils.ProcessGenericUnauthorized(c)
			return
		}
		c.Next()
	}
}

type AdminHandler struct {
	store  CatalogStore
	logger *zap.Logger
	now    func() time.Time
}

func NewAdminHandler(store CatalogStore, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes mounts list, create, update and delete for every collection.
func (h *AdminHandler) RegisterRoutes(group *gin.RouterGroup) {
	registerCollection[models.Genre](group, h, supabase.GenresTable, "name.asc")
	registerCollection[models.Category](group, h, supabase.CategoriesTable, "name.asc")
	registerCollection[models.Manga](group, h, supabase.MangaTable, "created_at.desc")
	registerCollection[models.Section](group, h, supabase.SectionsTable, "position.asc")
	registerCollection[models.Page](group, h, supabase.PagesTable, "created_at.desc")
	registerCollection[models.Chapter](group, h, supabase.ChaptersTable, "number.asc")
	registerCollection[models.Slider](group, h, supabase.SlidersTable, "position.asc")
	registerCollection[models.News](group, h, supabase.NewsTable, "published_at.desc")
	registerCollection[models.Review](group, h, supabase.ReviewsTable, "created_at.desc")
}

func registerCollection[T any, P interface {
	*T
	models.Document
}](group *gin.RouterGroup, h *AdminHandler, table, order string) {
	routes := group.Group("/" + table)

	routes.GET("", func(c *gin.Context) {
		records := []T{}
		if err := h.store.List(c.Request.Context(), table, supabase.Query{Order: order}, &records); err != nil {
			internalError(c, h.logger, "failed to list "+table, err)
			return
		}
		c.JSON(http.StatusOK, records)
	})

	routes.POST("", func(c *gin.Context) {
		var record T
		if !h.bindDocument(c, P(&record), "", true) {
			return
		}
		if err := h.store.Insert(c.Request.Context(), table, &record); err != nil {
			internalError(c, h.logger, "failed to insert into "+table, err)
			return
		}
		h.logger.Info("admin created record", zap.String("table", table))
		c.JSON(http.StatusCreated, &record)
	})

	routes.PUT("/:id", func(c *gin.Context) {
		var record T
		id := c.Param("id")
		if !h.bindDocument(c, P(&record), id, false) {
			return
		}
		if err := h.store.Update(c.Request.Context(), table, id, &record); err != nil {
			lookupError(c, h.logger, "failed to update "+table, err)
			return
		}
		h.logger.Info("admin updated record", zap.String("table", table), zap.String("id", id))
		c.JSON(http.StatusOK, &record)
	})

	routes.DELETE("/:id", func(c *gin.Context) {
		id := c.Param("id")
		if err := h.store.Delete(c.Request.Context(), table, id); err != nil {
			lookupError(c, h.logger, "failed to delete from "+table, err)
			return
		}
		h.logger.Info("admin deleted record", zap.String("table", table), zap.String("id", id))
		c.Status(http.StatusNoContent)
	})
}

// bindDocument decodes, prepares and validates the body. It writes the error response itself.
func (h *AdminHandler) bindDocument(c *gin.Context, doc models.Document, id string, creating bool) bool {
	if err := c.ShouldBindJSON(doc); err != nil {
		utils.ProcessGenericBadRequest(c)
		return false
	}
	if id != "" {
		doc.SetId(id)
	}
	doc.Prepare(h.now(), creating)
	if err := doc.Validate(); err != nil {
		utils.ProcessBadRequestMessage(c, err.Error())
		return false
	}
	return true
}
