package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"servicehub-be/internal/product"
)

func (s *Server) listProducts(c *gin.Context) {
	opts := product.ListOptions{
		Limit: queryInt32(c, "limit"),
		Page:  queryInt32(c, "page"),
	}

	if q := c.Query("q"); q != "" {
		opts.Search = &q
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := parseID(v); err == nil {
			opts.CategoryID = &id
		}
	}
	if v := c.Query("tag_id"); v != "" {
		if id, err := parseID(v); err == nil {
			opts.TagID = &id
		}
	}
	if v := c.Query("min_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			opts.MinPrice = &d
		}
	}
	if v := c.Query("max_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			opts.MaxPrice = &d
		}
	}

	products, total, err := s.products.GetProducts(c.Request.Context(), opts)
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, listResponse{Data: out, Total: total})
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	includeDeleted := c.Query("include_deleted") == "true"

	p, err := s.products.GetProduct(c.Request.Context(), id, includeDeleted)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

type createProductReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	ImageURL    *string `json:"image_url"`
	CategoryID  uint    `json:"category_id"`
	TagIDs      []uint  `json:"tag_ids"`
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}

	p, err := s.products.CreateProduct(c.Request.Context(), product.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(p))
}

type updateProductReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	ImageURL    *string `json:"image_url"`
	CategoryID  *uint   `json:"category_id"`
	TagIDs      []uint  `json:"tag_ids"`
}

func (s *Server) updateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	input := product.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		TagIDs:      req.TagIDs,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}
		input.Price = &price
	}

	p, err := s.products.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := s.products.DeleteProduct(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
