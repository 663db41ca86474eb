package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicehub-be/internal/tag"
)

func (s *Server) listTags(c *gin.Context) {
	var filter *string
	if q := c.Query("q"); q != "" {
		filter = &q
	}

	tags, err := s.tags.GetTags(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagResponse(t))
	}
	c.JSON(http.StatusOK, listResponse{Data: out, Total: int64(len(out))})
}

func (s *Server) getTag(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	t, err := s.tags.GetTag(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTagResponse(t))
}

type createTagReq struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

func (s *Server) createTag(c *gin.Context) {
	var req createTagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	t, err := s.tags.AddTag(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTagResponse(t))
}

type updateTagReq struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Server) updateTag(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateTagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	t, err := s.tags.UpdateTag(c.Request.Context(), id, tag.UpdateInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTagResponse(t))
}

func (s *Server) deleteTag(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := s.tags.DeleteTag(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
