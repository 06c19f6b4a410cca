package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mangashelf/mangashelf/internal/utils"
	"github.com/mangashelf/mangashelf/supabase"
)

func lookupError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	if errors.Is(err, supabase.ErrNotFound) {
		utils.ProcessGenericNotFound(c)
		return
	}
	internalError(c, logger, msg, err)
}

func internalError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	utils.ProcessGenericInternalError(c)
}
