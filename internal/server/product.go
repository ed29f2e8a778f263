package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/mingchang/meatshop/internal/product/domain"
)

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Query       string `form:"q"`
		CategoryID  string `form:"category_id"`
		IsFeatured  string `form:"is_featured"`
		IsAvailable string `form:"is_available"`
		StockStatus string `form:"stock_status"`
		Page        string `form:"page"`
		PageSize    string `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isFeatured, err := optionalBool(query.IsFeatured, "is_featured")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	isAvailable, err := optionalBool(query.IsAvailable, "is_available")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Query:       strings.TrimSpace(query.Query),
		CategoryID:  strings.TrimSpace(query.CategoryID),
		IsFeatured:  isFeatured,
		IsAvailable: isAvailable,
		StockStatus: strings.TrimSpace(query.StockStatus),
		Page:        strings.TrimSpace(query.Page),
		PageSize:    strings.TrimSpace(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProduct(c *gin.Context) {
	resp, err := s.productSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
