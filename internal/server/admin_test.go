package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	categorydomain "github.com/mingchang/meatshop/internal/category/domain"
	companydomain "github.com/mingchang/meatshop/internal/company/domain"
	inquirydomain "github.com/mingchang/meatshop/internal/inquiry/domain"
	productdomain "github.com/mingchang/meatshop/internal/product/domain"
	imagedomain "github.com/mingchang/meatshop/internal/productimage/domain"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/stretchr/testify/require"
)

func validCompanyRequest() companydomain.Request {
	return companydomain.Request{
		Name:          bilingual.New("明昌肉舖", "Ming Chang Meats"),
		About:         bilingual.New("三代經營的肉舖", "A family butcher for three generations"),
		Address:       bilingual.New("台北市中山路1號", "1 Zhongshan Rd, Taipei"),
		BusinessHours: bilingual.New("週一至週六 8:00-19:00", "Mon-Sat 8:00-19:00"),
		Phone:         "02-2345-6789",
		Email:         "shop@example.com",
	}
}

func TestAdminRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(http.MethodGet, "/admin/api/categories", "", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")

	w = env.admin(http.MethodGet, "/admin/api/categories", managerUser, "wrong-password", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")

	w = env.admin(http.MethodGet, "/admin/api/categories", managerUser, managerPassword, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminCategoryLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(http.MethodPost, "/admin/api/categories", managerUser, managerPassword, categorydomain.CreateRequest{
		Name: bilingual.New("豬肉", "Pork"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[categorydomain.Response](t, w)
	require.Equal(t, "pork", created.Slug)

	w = env.admin(http.MethodPost, "/admin/api/categories", managerUser, managerPassword, categorydomain.CreateRequest{
		Name: bilingual.New("豬肉", "Pork"),
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.admin(http.MethodGet, "/admin/api/categories/"+created.ID, staffUser, staffPassword, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.admin(http.MethodDelete, "/admin/api/categories/"+created.ID, staffUser, staffPassword, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.admin(http.MethodDelete, "/admin/api/categories/"+created.ID, managerUser, managerPassword, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.admin(http.MethodGet, "/admin/api/categories/"+created.ID, managerUser, managerPassword, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminValidationErrorShape(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(http.MethodPost, "/admin/api/categories", managerUser, managerPassword, categorydomain.CreateRequest{
		Name: bilingual.New("", "Pork"),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	payload := decodeError(t, w)
	require.Equal(t, "validation_error", payload.Type)
	if len(payload.Errors) == 0 {
		t.Fatalf("expected field errors, got %+v", payload)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/api/products", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(managerUser, managerPassword)
	w = env.serve(req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminProductList(t *testing.T) {
	env := newTestEnv(t)

	beef := env.category(t, "牛肉", "Beef")
	env.product(t, beef.ID, "肋眼牛排", "Ribeye Steak", "1280.50")
	env.product(t, beef.ID, "菲力牛排", "Filet Mignon", "1500")

	w := env.admin(http.MethodGet, "/admin/api/products?q=ribeye", staffUser, staffPassword, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeData[productdomain.ListResponse](t, w)
	require.Len(t, list.Items, 1)
	require.Equal(t, "NT$ 1,280.50", list.Items[0].FormattedPrice)

	w = env.admin(http.MethodGet, "/admin/api/products?is_featured=maybe", staffUser, staffPassword, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.admin(http.MethodGet, "/admin/api/products?page=9", staffUser, staffPassword, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUploadProductImage(t *testing.T) {
	env := newTestEnv(t)

	beef := env.category(t, "牛肉", "Beef")
	ribeye := env.product(t, beef.ID, "肋眼牛排", "Ribeye Steak", "1280.50")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "ribeye.jpg")
	require.NoError(t, err)
	_, err = part.Write(sampleJPEG(t))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("alt_text_zh", "肋眼牛排"))
	require.NoError(t, mw.WriteField("alt_text_en", "Ribeye steak"))
	require.NoError(t, mw.WriteField("is_primary", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/api/products/"+ribeye.ID+"/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetBasicAuth(staffUser, staffPassword)
	w := env.serve(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	uploaded := decodeData[imagedomain.Response](t, w)
	require.True(t, uploaded.IsPrimary)
	require.NotEmpty(t, uploaded.URLs.Thumbnail)

	w = env.admin(http.MethodGet, "/admin/api/products/"+ribeye.ID+"/images", staffUser, staffPassword, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeData[[]imagedomain.Response](t, w), 1)

	req = httptest.NewRequest(http.MethodPost, "/admin/api/products/"+ribeye.ID+"/images", nil)
	req.SetBasicAuth(staffUser, staffPassword)
	w = env.serve(req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminCompanySingleton(t *testing.T) {
	env := newTestEnv(t)

	w := env.admin(http.MethodGet, "/admin/api/company", managerUser, managerPassword, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.admin(http.MethodPost, "/admin/api/company", staffUser, staffPassword, validCompanyRequest())
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.admin(http.MethodPost, "/admin/api/company", managerUser, managerPassword, validCompanyRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, "Ming Chang Meats", decodeData[companydomain.Response](t, w).Name.EN)

	w = env.admin(http.MethodPost, "/admin/api/company", managerUser, managerPassword, validCompanyRequest())
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, companyAdminPath, w.Header().Get("Location"))

	w = env.admin(http.MethodDelete, "/admin/api/company", managerUser, managerPassword, nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, "GET, POST, PUT", w.Header().Get("Allow"))

	update := validCompanyRequest()
	update.Phone = "02-8765-4321"
	w = env.admin(http.MethodPut, "/admin/api/company", managerUser, managerPassword, update)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "02-8765-4321", decodeData[companydomain.Response](t, w).Phone)

	w = env.get("/about/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Ming Chang Meats")
}

func TestAdminInquiryBulkAction(t *testing.T) {
	env := newTestEnv(t)

	ctx := context.Background()
	form := inquirydomain.Form{
		Name:    "王小明",
		Phone:   "0912-345-678",
		Email:   "ming@example.com",
		Message: "請問牛小排現在有貨嗎？",
	}
	var ids []string
	for i := 0; i < 2; i++ {
		inq, err := env.inquiries.Submit(ctx, form, inquirydomain.Meta{ClientIP: "203.0.113.7"})
		require.NoError(t, err)
		ids = append(ids, strconv.FormatInt(inq.ID, 10))
	}

	w := env.admin(http.MethodPost, "/admin/api/inquiries/actions", staffUser, staffPassword, inquirydomain.BulkRequest{
		Action: "mark_as_replied",
		IDs:    ids,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeData[inquirydomain.BulkResult](t, w)
	require.EqualValues(t, 2, result.Updated)
	require.Equal(t, "2 inquiry(ies) marked as replied.", result.Message)

	w = env.admin(http.MethodGet, "/admin/api/inquiries/"+ids[0], staffUser, staffPassword, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeData[inquirydomain.Response](t, w)
	require.Equal(t, inquirydomain.StatusReplied, got.Status)
	require.NotNil(t, got.RepliedAt)

	w = env.admin(http.MethodGet, "/admin/api/inquiries?status=replied", staffUser, staffPassword, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeData[inquirydomain.ListResponse](t, w).Items, 2)

	w = env.admin(http.MethodPost, "/admin/api/inquiries/actions", staffUser, staffPassword, inquirydomain.BulkRequest{
		Action: "delete_everything",
		IDs:    ids,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
