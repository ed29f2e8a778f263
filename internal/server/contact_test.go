package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	inquirydomain "github.com/mingchang/meatshop/internal/inquiry/domain"
	"github.com/stretchr/testify/require"
)

func validContactForm() url.Values {
	return url.Values{
		"name":    {"王小明"},
		"phone":   {"0912-345-678"},
		"email":   {"ming@example.com"},
		"subject": {"訂購"},
		"message": {"請問牛小排現在有貨嗎？"},
	}
}

func (e *testEnv) inquiryCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&inquirydomain.ContactInquiry{}).Count(&n).Error)
	return n
}

func TestSubmitContactAjax(t *testing.T) {
	env := newTestEnv(t)

	w := env.postForm("/contact/", validContactForm(), true)
	require.Equal(t, http.StatusOK, w.Code)

	var result contactResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Equal(t, "success", result.Status)
	require.Equal(t, inquirydomain.AjaxSuccessMessage, result.Message)
	require.Equal(t, contactSuccessPath, result.RedirectURL)
	require.EqualValues(t, 1, env.inquiryCount(t))
}

func TestSubmitContactAjaxValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	form := validContactForm()
	form.Set("message", "太短")
	form.Set("email", "not-an-email")

	w := env.postForm("/contact/", form, true)
	require.Equal(t, http.StatusOK, w.Code)

	var result contactResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Equal(t, "error", result.Status)
	require.Equal(t, inquirydomain.AjaxErrorMessage, result.Message)
	require.Contains(t, result.Errors, "message")
	require.Contains(t, result.Errors, "email")
	require.Equal(t, []string{inquirydomain.MsgMessageTooShort}, result.Errors["message"])
	require.EqualValues(t, 0, env.inquiryCount(t))
}

func TestSubmitContactFullPage(t *testing.T) {
	env := newTestEnv(t)

	w := env.postForm("/contact/", validContactForm(), false)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, contactSuccessPath, w.Header().Get("Location"))

	var flash *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookieName {
			flash = c
		}
	}
	if flash == nil {
		t.Fatalf("expected %s cookie to be set", flashCookieName)
	}
	require.Equal(t, inquirydomain.SourceContact, flash.Value)

	req := httptest.NewRequest(http.MethodGet, contactSuccessPath, nil)
	req.AddCookie(flash)
	w = env.serve(req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Thank you for your inquiry!")
}

func TestSubmitContactFullPageRerendersErrors(t *testing.T) {
	env := newTestEnv(t)

	form := validContactForm()
	form.Set("message", "太短")

	w := env.postForm("/contact/", form, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Message must be at least 10 characters long")
	require.Contains(t, w.Body.String(), "ming@example.com")
	require.EqualValues(t, 0, env.inquiryCount(t))
}

func TestSubmitProductContact(t *testing.T) {
	env := newTestEnv(t)

	beef := env.category(t, "牛肉", "Beef")
	env.product(t, beef.ID, "肋眼牛排", "Ribeye Steak", "1280.50")

	w := env.get("/contact/product/ribeye-steak/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Ribeye Steak")

	form := validContactForm()
	form.Del("subject")
	w = env.postForm("/contact/product/ribeye-steak/", form, false)
	require.Equal(t, http.StatusSeeOther, w.Code)

	var stored inquirydomain.ContactInquiry
	require.NoError(t, env.db.First(&stored).Error)
	require.Equal(t, "肋眼牛排 (Ribeye Steak)", stored.ProductName)
	require.Equal(t, inquirydomain.SourceProduct, stored.Source())

	w = env.postForm("/contact/product/no-such-cut/", validContactForm(), true)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.get("/contact/product/no-such-cut/")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactSuccessWithoutFlash(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(contactSuccessPath)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Thank you for your inquiry!")
}

func TestContactRateLimitDisabledWithoutLimiter(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		w := env.postForm("/contact/", validContactForm(), true)
		if w.Code != http.StatusOK {
			t.Fatalf("submission %d: expected 200, got %d", i, w.Code)
		}
	}
	require.EqualValues(t, 3, env.inquiryCount(t))
}
