package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	categorydomain "github.com/mingchang/meatshop/internal/category/domain"
	productdomain "github.com/mingchang/meatshop/internal/product/domain"
)

func (s *Server) Home(c *gin.Context) {
	ctx := c.Request.Context()

	featured, err := s.productSvc.Featured(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}
	categories, err := s.categorySvc.ListActive(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}

	data := s.pageData(c, "首頁 Home")
	data["Featured"] = featured
	data["Categories"] = categories
	s.pages.html(c, http.StatusOK, "home", data)
}

func (s *Server) ProductList(c *gin.Context) {
	var query struct {
		Category string `form:"category"`
		Query    string `form:"q"`
		Sort     string `form:"sort"`
		Page     string `form:"page"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		s.renderError(c, ErrNotFound)
		return
	}

	ctx := c.Request.Context()
	catalog, err := s.productSvc.ListCatalog(ctx, productdomain.CatalogQuery{
		CategorySlug: strings.TrimSpace(query.Category),
		Query:        strings.TrimSpace(query.Query),
		Sort:         strings.TrimSpace(query.Sort),
		Page:         strings.TrimSpace(query.Page),
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	categories, err := s.categorySvc.ListActive(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}

	categorySlug := strings.TrimSpace(query.Category)
	var current *categorydomain.Category
	for i := range categories {
		if categories[i].Slug == categorySlug {
			current = &categories[i]
			break
		}
	}

	data := s.pageData(c, "產品 Products")
	data["Products"] = catalog.Items
	data["Page"] = catalog.Page
	data["Categories"] = categories
	data["Category"] = current
	data["CategorySlug"] = categorySlug
	data["Query"] = strings.TrimSpace(query.Query)
	data["Sort"] = strings.TrimSpace(query.Sort)
	data["Filters"] = url.Values{
		"category": {categorySlug},
		"q":        {strings.TrimSpace(query.Query)},
		"sort":     {strings.TrimSpace(query.Sort)},
	}
	s.pages.html(c, http.StatusOK, "product_list", data)
}

func (s *Server) ProductDetail(c *gin.Context) {
	detail, err := s.productSvc.GetDetail(c.Request.Context(), strings.TrimSpace(c.Param("slug")))
	if err != nil {
		s.renderError(c, err)
		return
	}

	data := s.pageData(c, detail.Product.Name.Display())
	data["Product"] = detail.Product
	data["Related"] = detail.Related
	s.pages.html(c, http.StatusOK, "product_detail", data)
}

func (s *Server) About(c *gin.Context) {
	s.pages.html(c, http.StatusOK, "about", s.pageData(c, "關於我們 About Us"))
}

func (s *Server) Location(c *gin.Context) {
	data := s.pageData(c, "交通位置 Location")
	data["MapsAPIKey"] = s.cfg.GoogleMapsAPIKey
	s.pages.html(c, http.StatusOK, "location", data)
}
