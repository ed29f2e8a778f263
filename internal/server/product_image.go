package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	imagedomain "github.com/mingchang/meatshop/internal/productimage/domain"
	"github.com/mingchang/meatshop/pkg/bilingual"
)

func (s *Server) ListProductImages(c *gin.Context) {
	resp, err := s.imageSvc.ListByProduct(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductImage(c *gin.Context) {
	resp, err := s.imageSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UploadProductImage accepts a multipart form with the file in "image".
func (s *Server) UploadProductImage(c *gin.Context) {
	filename, data, err := readUpload(c, "image")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := formInt(c.PostForm("display_order"), "display_order")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	isPrimary, err := optionalBool(c.PostForm("is_primary"), "is_primary")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.imageSvc.Upload(c.Request.Context(), imagedomain.UploadRequest{
		ProductID:    strings.TrimSpace(c.Param("id")),
		Filename:     filename,
		Data:         data,
		AltText:      bilingual.New(c.PostForm("alt_text_zh"), c.PostForm("alt_text_en")),
		DisplayOrder: order,
		IsPrimary:    isPrimary != nil && *isPrimary,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateProductImage(c *gin.Context) {
	var req imagedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.imageSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProductImage(c *gin.Context) {
	if err := s.imageSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// readUpload returns the name and bytes of one uploaded file, refusing files
// above maxUploadBytes.
func readUpload(c *gin.Context, field string) (string, []byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil, newValidationError(field, "required", field+" file is required")
	}
	if header.Size > maxUploadBytes {
		return "", nil, newValidationError(field, "too_large", field+" file is too large")
	}

	data, err := readMultipartFile(header)
	if err != nil {
		return "", nil, err
	}
	if len(data) > maxUploadBytes {
		return "", nil, newValidationError(field, "too_large", field+" file is too large")
	}
	return header.Filename, data, nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
}
