package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	companydomain "github.com/mingchang/meatshop/internal/company/domain"
	"github.com/mingchang/meatshop/internal/observability/logger"
	productdomain "github.com/mingchang/meatshop/internal/product/domain"
	imagedomain "github.com/mingchang/meatshop/internal/productimage/domain"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/format"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "templates/base.html"

var pageNames = []string{
	"home",
	"product_list",
	"product_detail",
	"about",
	"location",
	"contact",
	"contact_success",
	"error",
}

// renderer holds one template set per page, each parsed together with the
// shared layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer(funcs template.FuncMap) (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, layoutTemplate, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *renderer) html(c *gin.Context, status int, page string, data gin.H) {
	t, ok := r.pages[page]
	if !ok {
		AbortWithError(c, fmt.Errorf("unknown page %q", page))
		return
	}
	c.Render(status, render.HTML{Template: t, Name: "base", Data: data})
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"bilingual": func(t bilingual.Text) string { return t.Display() },
		"pick":      func(t bilingual.Text, lang string) string { return t.Pick(lang) },
		"twd":       twd,
		"weight":    format.Weight,
		"stockBadge": func(status productdomain.StockStatus) string {
			return status.BadgeClass()
		},
		"stockLabel": func(status productdomain.StockStatus) string {
			return status.Label()
		},
		"imageURLs": func(image imagedomain.ProductImage) imagedomain.URLs {
			return s.imageSvc.URLs(image)
		},
		"heroURL": func(info *companydomain.CompanyInfo) string {
			return s.companySvc.HeroURL(info)
		},
		"pageURL": pageURL,
		"fieldErrors": func(errs map[string][]string, field string) []string {
			return errs[field]
		},
	}
}

// twd formats prices for templates, accepting both stored and optional
// amounts.
func twd(v any) string {
	switch amount := v.(type) {
	case decimal.Decimal:
		return format.TWD(&amount)
	case *decimal.Decimal:
		return format.TWD(amount)
	default:
		return format.TWD(nil)
	}
}

// pageURL links to another catalog page keeping the active filters.
func pageURL(filters url.Values, page int) string {
	q := url.Values{}
	for key, values := range filters {
		for _, v := range values {
			if v != "" {
				q.Add(key, v)
			}
		}
	}
	q.Set("page", strconv.Itoa(page))
	return "/products/?" + q.Encode()
}

// pageData starts the template data every page shares. A failing company
// lookup only hides the footer details.
func (s *Server) pageData(c *gin.Context, title string) gin.H {
	ctx := c.Request.Context()
	info, err := s.companySvc.Get(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("company info lookup failed", zap.Error(err))
		info = nil
	}
	return gin.H{
		"Title":   title,
		"Company": info,
		"Path":    c.Request.URL.Path,
		"Year":    time.Now().Year(),
	}
}

// renderError answers an HTML request with the bilingual error page.
func (s *Server) renderError(c *gin.Context, err error) {
	status, _ := mapError(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.FromContext(c.Request.Context()).Error("page rendering failed", zap.Error(err))
	}
	data := s.pageData(c, errorTitle(status))
	data["Status"] = status
	s.pages.html(c, status, "error", data)
}

func errorTitle(status int) string {
	switch status {
	case http.StatusNotFound:
		return "找不到頁面 Page Not Found"
	case http.StatusBadRequest:
		return "請求錯誤 Bad Request"
	case http.StatusTooManyRequests:
		return "請求過於頻繁 Too Many Requests"
	default:
		return "伺服器錯誤 Server Error"
	}
}
