package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/mingchang/meatshop/internal/clock"
	companydomain "github.com/mingchang/meatshop/internal/company/domain"
	"github.com/mingchang/meatshop/internal/config"
	"github.com/mingchang/meatshop/internal/inquiry/domain"
	"github.com/mingchang/meatshop/internal/inquiry/repository"
	"github.com/mingchang/meatshop/internal/migration"
	productdomain "github.com/mingchang/meatshop/internal/product/domain"
	"github.com/mingchang/meatshop/internal/providers/email"
	"github.com/mingchang/meatshop/internal/providers/email/mock"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/db/dbtest"
	"github.com/mingchang/meatshop/pkg/validation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeProducts struct {
	productdomain.Service
	items map[string]*productdomain.Product
}

func (f fakeProducts) GetBySlug(_ context.Context, slug string) (*productdomain.Product, error) {
	if p, ok := f.items[slug]; ok {
		return p, nil
	}
	return nil, productdomain.ErrNotFound
}

type fakeCompany struct {
	companydomain.Service
	info *companydomain.CompanyInfo
	err  error
}

func (f fakeCompany) Get(context.Context) (*companydomain.CompanyInfo, error) {
	return f.info, f.err
}

type testEnv struct {
	svc   *Service
	clock *clock.FakeClock
	mail  *mock.MockProvider
}

func newTestEnv(t *testing.T, company fakeCompany, notify config.NotificationConfig) *testEnv {
	t.Helper()

	conn := dbtest.Open(t)
	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	ctrl := gomock.NewController(t)
	mail := mock.NewMockProvider(ctrl)
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clk,
		Cfg: config.Config{
			TimeZone: "Asia/Taipei",
			Email:    config.EmailConfig{From: "noreply@example.com"},
		},
		Repo: repository.Provide(),
		Products: fakeProducts{items: map[string]*productdomain.Product{
			"ribeye": {ID: 42, Slug: "ribeye", Name: bilingual.New("肋眼牛排", "Ribeye Steak")},
			"long-cut": {ID: 43, Slug: "long-cut", Name: bilingual.New(
				strings.Repeat("和牛", 75), strings.Repeat("Wagyu ", 25)+strings.Repeat("x", 50),
			)},
		}},
		Company:       company,
		Email:         mail,
		Notifications: config.NewStaticNotificationConfigHolder(notify),
	}).(*Service)

	return &testEnv{svc: svc, clock: clk, mail: mail}
}

func shopCompany() fakeCompany {
	return fakeCompany{info: &companydomain.CompanyInfo{ID: companydomain.SingletonID, Email: "shop@example.com"}}
}

func sampleForm() domain.Form {
	return domain.Form{
		Name:    "王小明",
		Phone:   "0912345678",
		Email:   "ming@example.com",
		Message: "請問牛小排現在有貨嗎？",
	}
}

func TestSubmitNotifiesCompanyEmail(t *testing.T) {
	notify := config.DefaultNotificationConfig()
	notify.Bcc = []string{"owner@example.com"}
	env := newTestEnv(t, shopCompany(), notify)

	var sent email.Message
	env.mail.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg email.Message) error {
		sent = msg
		return nil
	})

	inq, err := env.svc.Submit(context.Background(), sampleForm(), domain.Meta{ClientIP: "203.0.113.9", UserAgent: "test-agent"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusNew, inq.Status)
	require.Equal(t, "zh", inq.LanguagePreference)
	require.Equal(t, domain.SourceContact, inq.Source())
	require.Equal(t, "203.0.113.9", inq.Metadata[domain.MetaClientIP])

	require.Equal(t, []string{"shop@example.com"}, sent.To)
	require.Equal(t, []string{"owner@example.com"}, sent.Bcc)
	require.Equal(t, "noreply@example.com", sent.From)
	require.Equal(t, "新的客戶詢問 New Customer Inquiry - 一般詢問 General Inquiry", sent.Subject)
	require.Contains(t, sent.Text, "詢問產品 Product: 無指定 Not specified\n")
	require.Contains(t, sent.Text, "語言偏好 Language: Traditional Chinese\n")
	require.Contains(t, sent.Text, "提交時間 Submitted: 2024-05-01 16:00\n")
}

func TestSubmitSucceedsWhenEmailFails(t *testing.T) {
	env := newTestEnv(t, shopCompany(), config.DefaultNotificationConfig())
	env.mail.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp unavailable"))

	inq, err := env.svc.Submit(context.Background(), sampleForm(), domain.Meta{})
	require.NoError(t, err)

	got, err := env.svc.Get(context.Background(), strconv.FormatInt(inq.ID, 10))
	require.NoError(t, err)
	require.Equal(t, "王小明", got.Name)
}

func TestSubmitSurvivesProviderPanic(t *testing.T) {
	env := newTestEnv(t, shopCompany(), config.DefaultNotificationConfig())
	env.mail.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, email.Message) error {
		panic("boom")
	})

	_, err := env.svc.Submit(context.Background(), sampleForm(), domain.Meta{})
	require.NoError(t, err)
}

func TestSubmitFallsBackWithoutCompany(t *testing.T) {
	env := newTestEnv(t, fakeCompany{err: errors.New("db down")}, config.DefaultNotificationConfig())
	env.mail.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg email.Message) error {
		require.Equal(t, []string{"info@mingchang.com.tw"}, msg.To)
		return nil
	})

	_, err := env.svc.Submit(context.Background(), sampleForm(), domain.Meta{})
	require.NoError(t, err)
}

func TestSubmitSkipsDisabledNotifications(t *testing.T) {
	notify := config.DefaultNotificationConfig()
	notify.Enabled = false
	env := newTestEnv(t, shopCompany(), notify)

	_, err := env.svc.Submit(context.Background(), sampleForm(), domain.Meta{})
	require.NoError(t, err)
}

func TestSubmitRejectsInvalidFormWithoutStoring(t *testing.T) {
	env := newTestEnv(t, shopCompany(), config.DefaultNotificationConfig())
	form := sampleForm()
	form.Message = "太短了"

	_, err := env.svc.Submit(context.Background(), form, domain.Meta{})
	verrs, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	require.True(t, verrs.Has("message"))

	list, err := env.svc.List(context.Background(), domain.ListRequest{})
	require.NoError(t, err)
	require.Empty(t, list.Items)
}

func TestSubmitForProductUsesCatalogName(t *testing.T) {
	env := newTestEnv(t, shopCompany(), config.DefaultNotificationConfig())

	var sent email.Message
	env.mail.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg email.Message) error {
		sent = msg
		return nil
	})

	form := sampleForm()
	form.ProductName = "something else"
	inq, err := env.svc.SubmitForProduct(context.Background(), "ribeye", form, domain.Meta{})
	require.NoError(t, err)
	require.Equal(t, "肋眼牛排 (Ribeye Steak)", inq.ProductName)
	require.Equal(t, "詢問產品: 肋眼牛排 Product Inquiry: Ribeye Steak", inq.Subject)
	require.Equal(t, "42", inq.Metadata[domain.MetaProductID])
	require.Equal(t, domain.SourceProduct, inq.Source())

	require.Equal(t, "產品詢問 Product Inquiry - 肋眼牛排 (Ribeye Steak)", sent.Subject)
	require.True(t, strings.HasPrefix(sent.Text, "產品詢問 Product Inquiry\n"))

	_, err = env.svc.SubmitForProduct(context.Background(), "missing", form, domain.Meta{})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateStatusStampsRepliedAtOnce(t *testing.T) {
	notify := config.DefaultNotificationConfig()
	notify.Enabled = false
	env := newTestEnv(t, shopCompany(), notify)
	ctx := context.Background()

	inq, err := env.svc.Submit(ctx, sampleForm(), domain.Meta{})
	require.NoError(t, err)
	id := strconv.FormatInt(inq.ID, 10)

	env.clock.Advance(90 * time.Minute)
	replied := string(domain.StatusReplied)
	notes := "  called back  "
	resp, err := env.svc.Update(ctx, domain.UpdateRequest{ID: id, Status: &replied, AdminNotes: &notes})
	require.NoError(t, err)
	require.Equal(t, domain.StatusReplied, resp.Status)
	require.Equal(t, "called back", resp.AdminNotes)
	require.NotNil(t, resp.RepliedAt)
	first := resp.RepliedAt.UTC()
	require.Equal(t, "1h 30m", resp.ResponseTimeDisplay)

	env.clock.Advance(time.Hour)
	resolved := string(domain.StatusResolved)
	resp, err = env.svc.Update(ctx, domain.UpdateRequest{ID: id, Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, resp.RepliedAt)

	resp, err = env.svc.Update(ctx, domain.UpdateRequest{ID: id, Status: &replied})
	require.NoError(t, err)
	require.True(t, first.Equal(resp.RepliedAt.UTC()), "replied_at must not move")

	bogus := "archived"
	_, err = env.svc.Update(ctx, domain.UpdateRequest{ID: id, Status: &bogus})
	if _, ok := validation.As(err); !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
}

func TestBulkUpdateStatus(t *testing.T) {
	notify := config.DefaultNotificationConfig()
	notify.Enabled = false
	env := newTestEnv(t, shopCompany(), notify)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		inq, err := env.svc.Submit(ctx, sampleForm(), domain.Meta{})
		require.NoError(t, err)
		ids = append(ids, strconv.FormatInt(inq.ID, 10))
	}

	res, err := env.svc.BulkUpdateStatus(ctx, domain.BulkRequest{Action: domain.ActionMarkReplied, IDs: ids[:2]})
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Updated)
	require.Equal(t, "2 inquiry(ies) marked as replied.", res.Message)

	list, err := env.svc.List(ctx, domain.ListRequest{Status: string(domain.StatusReplied)})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	for _, item := range list.Items {
		require.NotNil(t, item.RepliedAt)
	}

	_, err = env.svc.BulkUpdateStatus(ctx, domain.BulkRequest{Action: "delete_everything", IDs: ids})
	if _, ok := validation.As(err); !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	_, err = env.svc.BulkUpdateStatus(ctx, domain.BulkRequest{Action: domain.ActionMarkResolved, IDs: []string{"x"}})
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestListFiltersByLocalDate(t *testing.T) {
	notify := config.DefaultNotificationConfig()
	notify.Enabled = false
	env := newTestEnv(t, shopCompany(), notify)
	ctx := context.Background()

	// 2024-05-01 16:00 in Taipei.
	first, err := env.svc.Submit(ctx, sampleForm(), domain.Meta{})
	require.NoError(t, err)

	// 2024-05-02 12:00 in Taipei.
	env.clock.Advance(20 * time.Hour)
	form := sampleForm()
	form.Name = "Alice"
	form.LanguagePreference = "en"
	second, err := env.svc.Submit(ctx, form, domain.Meta{})
	require.NoError(t, err)

	list, err := env.svc.List(ctx, domain.ListRequest{CreatedTo: "2024-05-01"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, strconv.FormatInt(first.ID, 10), list.Items[0].ID)

	list, err = env.svc.List(ctx, domain.ListRequest{CreatedFrom: "2024-05-02"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, strconv.FormatInt(second.ID, 10), list.Items[0].ID)

	list, err = env.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	require.Equal(t, "Alice", list.Items[0].Name, "newest first")

	list, err = env.svc.List(ctx, domain.ListRequest{Language: "en", Query: "alice"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	_, err = env.svc.List(ctx, domain.ListRequest{CreatedFrom: "05/01/2024"})
	if !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	_, err = env.svc.List(ctx, domain.ListRequest{Status: "archived"})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestComposeGeneralBody(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	inq := &domain.ContactInquiry{
		Name:               "Amy",
		Phone:              "0912345678",
		Email:              "amy@example.com",
		Subject:            "Wholesale",
		Message:            "Do you deliver to Taichung?",
		LanguagePreference: "both",
		CreatedAt:          time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC),
	}
	n := composeGeneral(inq, loc)

	want := "新的客戶詢問 New Customer Inquiry\n" +
		"===============================\n\n" +
		"客戶資訊 Customer Information:\n" +
		"姓名 Name: Amy\n" +
		"電話 Phone: 0912345678\n" +
		"信箱 Email: amy@example.com\n" +
		"語言偏好 Language: Both Languages\n\n" +
		"主旨 Subject: Wholesale\n\n" +
		"詢問產品 Product: 無指定 Not specified\n\n" +
		"詢問內容 Message:\n" +
		"Do you deliver to Taichung?\n\n" +
		"提交時間 Submitted: 2024-02-01 07:30\n\n" +
		"請透過客戶提供的聯絡方式回覆此詢問。\n" +
		"Please respond to this inquiry using the customer's provided contact information.\n"
	require.Equal(t, want, n.Body)
	require.Equal(t, "新的客戶詢問 New Customer Inquiry - Wholesale", n.Subject)
}

func TestSubmitForProductFitsLongCatalogNames(t *testing.T) {
	env := newTestEnv(t, shopCompany(), config.DefaultNotificationConfig())
	env.mail.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	inq, err := env.svc.SubmitForProduct(context.Background(), "long-cut", sampleForm(), domain.Meta{})
	require.NoError(t, err)
	require.Equal(t, domain.MaxProductNameLength, utf8.RuneCountInString(inq.ProductName))
	require.Equal(t, domain.MaxSubjectLength, utf8.RuneCountInString(inq.Subject))
	require.True(t, strings.HasPrefix(inq.ProductName, "和牛和牛"))
}

func TestSubmitClipsUserAgentOnRuneBoundary(t *testing.T) {
	env := newTestEnv(t, shopCompany(), config.DefaultNotificationConfig())
	env.mail.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	ua := "Mozilla/5.0 " + strings.Repeat("瀏覽器", 100)
	inq, err := env.svc.Submit(context.Background(), sampleForm(), domain.Meta{UserAgent: ua})
	require.NoError(t, err)

	stored, ok := inq.Metadata[domain.MetaUserAgent].(string)
	require.True(t, ok)
	require.True(t, utf8.ValidString(stored))
	require.Equal(t, maxUserAgent, utf8.RuneCountInString(stored))
	require.True(t, strings.HasPrefix(ua, stored))
}

func TestClip(t *testing.T) {
	require.Equal(t, "abc", clip("abc", 5))
	require.Equal(t, "肋眼", clip("肋眼牛排", 2))
	require.Equal(t, "", clip("牛", 0))
}
