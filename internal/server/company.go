package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	companydomain "github.com/mingchang/meatshop/internal/company/domain"
)

const companyAdminPath = "/admin/api/company"

func (s *Server) GetCompany(c *gin.Context) {
	resp, err := s.companySvc.GetResponse(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// CreateCompany only creates the first row. Once the company exists the
// caller is sent to the existing record instead.
func (s *Server) CreateCompany(c *gin.Context) {
	ctx := c.Request.Context()

	existing, err := s.companySvc.Get(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if existing != nil {
		c.Redirect(http.StatusSeeOther, companyAdminPath)
		return
	}

	var req companydomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.Create(ctx, req)
	if err != nil {
		if errors.Is(err, companydomain.ErrCompanyInfoExists) {
			c.Redirect(http.StatusSeeOther, companyAdminPath)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateCompany(c *gin.Context) {
	var req companydomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// DeleteCompany is never allowed.
func (s *Server) DeleteCompany(c *gin.Context) {
	c.Header("Allow", "GET, POST, PUT")
	AbortWithError(c, ErrMethodNotAllowed)
}

func (s *Server) UploadCompanyHero(c *gin.Context) {
	filename, data, err := readUpload(c, "image")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.companySvc.UploadHero(c.Request.Context(), filename, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
