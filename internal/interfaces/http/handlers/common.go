package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/middleware"
	"campus-market.backend/internal/interfaces/http/response"
)

// requireUser resolves the authenticated user or writes a 401 and reports
// false.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
	}
	return userID, ok
}

// pathID parses a UUID path parameter or writes a 400 and reports false.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page/limit query parameters; usecases clamp the values.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
