package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicehub-be/internal/category"
)

func (s *Server) listCategories(c *gin.Context) {
	var filter *string
	if q := c.Query("q"); q != "" {
		filter = &q
	}
	limit := queryInt32(c, "limit")
	page := queryInt32(c, "page")

	categories, total, err := s.categories.GetCategories(c.Request.Context(), filter, limit, page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, toCategoryResponse(cat))
	}
	c.JSON(http.StatusOK, listResponse{Data: out, Total: total})
}

func (s *Server) getCategory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	cat, err := s.categories.GetCategory(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(cat))
}

type createCategoryReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createCategory(c *gin.Context) {
	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cat, err := s.categories.AddCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCategoryResponse(cat))
}

type updateCategoryReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) updateCategory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cat, err := s.categories.UpdateCategory(c.Request.Context(), id, category.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(cat))
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := s.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// queryInt32 parses an optional positive integer query parameter.
func queryInt32(c *gin.Context, name string) *int32 {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n < 1 {
		return nil
	}
	out := int32(n)
	return &out
}
