package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inquirydomain "github.com/mingchang/meatshop/internal/inquiry/domain"
	"github.com/mingchang/meatshop/pkg/validation"
)

const (
	headerRequestedWith = "X-Requested-With"
	contactSuccessPath  = "/contact/success/"
	flashCookieName     = "contact_flash"
	flashMaxAge         = 300
)

type contactResult struct {
	Status      string              `json:"status"`
	Message     string              `json:"message"`
	RedirectURL string              `json:"redirect_url,omitempty"`
	Errors      map[string][]string `json:"errors,omitempty"`
}

func isAjax(c *gin.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.GetHeader(headerRequestedWith)), "XMLHttpRequest")
}

func (s *Server) ContactForm(c *gin.Context) {
	s.renderContact(c, contactAction(""), inquirydomain.Form{LanguagePreference: "zh"}, nil, nil)
}

func (s *Server) SubmitContact(c *gin.Context) {
	var form inquirydomain.Form
	if err := c.ShouldBind(&form); err != nil {
		s.respondContactError(c, invalidRequestError(), contactAction(""), form, nil)
		return
	}

	_, err := s.inquirySvc.Submit(c.Request.Context(), form, requestMeta(c))
	if err != nil {
		s.respondContactError(c, err, contactAction(""), form, nil)
		return
	}
	s.respondContactSuccess(c, inquirydomain.SourceContact)
}

func (s *Server) ProductContactForm(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	prefill, err := s.inquirySvc.ProductPrefill(c.Request.Context(), slug)
	if err != nil {
		s.renderError(c, err)
		return
	}
	form := inquirydomain.Form{
		Subject:            prefill.Subject,
		ProductName:        prefill.ProductName,
		LanguagePreference: "zh",
	}
	s.renderContact(c, contactAction(slug), form, prefill, nil)
}

func (s *Server) SubmitProductContact(c *gin.Context) {
	ctx := c.Request.Context()
	slug := strings.TrimSpace(c.Param("slug"))

	var form inquirydomain.Form
	if err := c.ShouldBind(&form); err != nil {
		s.respondContactError(c, invalidRequestError(), contactAction(slug), form, nil)
		return
	}

	_, err := s.inquirySvc.SubmitForProduct(ctx, slug, form, requestMeta(c))
	if err != nil {
		var prefill *inquirydomain.Prefill
		if _, ok := validation.As(err); ok {
			prefill, _ = s.inquirySvc.ProductPrefill(ctx, slug)
		}
		s.respondContactError(c, err, contactAction(slug), form, prefill)
		return
	}
	s.respondContactSuccess(c, inquirydomain.SourceProduct)
}

func (s *Server) ContactSuccess(c *gin.Context) {
	message := inquirydomain.SuccessMessage
	if source, err := c.Cookie(flashCookieName); err == nil {
		if source == inquirydomain.SourceProduct {
			message = inquirydomain.ProductSuccessMessage
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	}

	data := s.pageData(c, "詢問已送出 Inquiry Sent")
	data["Message"] = message
	s.pages.html(c, http.StatusOK, "contact_success", data)
}

func (s *Server) respondContactSuccess(c *gin.Context, source string) {
	if isAjax(c) {
		c.JSON(http.StatusOK, contactResult{
			Status:      "success",
			Message:     inquirydomain.AjaxSuccessMessage,
			RedirectURL: contactSuccessPath,
		})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, source, flashMaxAge, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, contactSuccessPath)
}

// respondContactError re-renders the form for field errors. Any other failure
// is answered as an error page, or as mapped JSON for background requests.
func (s *Server) respondContactError(c *gin.Context, err error, action string, form inquirydomain.Form, prefill *inquirydomain.Prefill) {
	vErr, ok := validation.As(err)
	if !ok {
		if isAjax(c) {
			AbortWithError(c, err)
			return
		}
		s.renderError(c, err)
		return
	}

	if isAjax(c) {
		c.JSON(http.StatusOK, contactResult{
			Status:  "error",
			Message: inquirydomain.AjaxErrorMessage,
			Errors:  vErr.ByField(),
		})
		return
	}
	s.renderContact(c, action, form, prefill, vErr.ByField())
}

func (s *Server) renderContact(c *gin.Context, action string, form inquirydomain.Form, prefill *inquirydomain.Prefill, errs map[string][]string) {
	title := "聯絡我們 Contact Us"
	if prefill != nil {
		title = "產品詢問 Product Inquiry"
	}
	data := s.pageData(c, title)
	data["Action"] = action
	data["Form"] = form
	data["Prefill"] = prefill
	data["Errors"] = errs
	s.pages.html(c, http.StatusOK, "contact", data)
}

func contactAction(productSlug string) string {
	if productSlug == "" {
		return "/contact/"
	}
	return "/contact/product/" + productSlug + "/"
}

func requestMeta(c *gin.Context) inquirydomain.Meta {
	return inquirydomain.Meta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
