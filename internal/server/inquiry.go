package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inquirydomain "github.com/mingchang/meatshop/internal/inquiry/domain"
)

func (s *Server) ListInquiries(c *gin.Context) {
	var query struct {
		Query       string `form:"q"`
		Status      string `form:"status"`
		Language    string `form:"language_preference"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
		Page        string `form:"page"`
		PageSize    string `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inquirySvc.List(c.Request.Context(), inquirydomain.ListRequest{
		Query:       strings.TrimSpace(query.Query),
		Status:      strings.TrimSpace(query.Status),
		Language:    strings.TrimSpace(query.Language),
		CreatedFrom: strings.TrimSpace(query.CreatedFrom),
		CreatedTo:   strings.TrimSpace(query.CreatedTo),
		Page:        strings.TrimSpace(query.Page),
		PageSize:    strings.TrimSpace(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInquiry(c *gin.Context) {
	resp, err := s.inquirySvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInquiry(c *gin.Context) {
	var req inquirydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.inquirySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// BulkInquiryAction applies one staff action to many inquiries at once.
func (s *Server) BulkInquiryAction(c *gin.Context) {
	var req inquirydomain.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inquirySvc.BulkUpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
