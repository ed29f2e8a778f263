package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/mingchang/meatshop/internal/clock"
	companydomain "github.com/mingchang/meatshop/internal/company/domain"
	"github.com/mingchang/meatshop/internal/config"
	"github.com/mingchang/meatshop/internal/inquiry/domain"
	"github.com/mingchang/meatshop/internal/observability/logger"
	"github.com/mingchang/meatshop/internal/observability/metrics"
	productdomain "github.com/mingchang/meatshop/internal/product/domain"
	"github.com/mingchang/meatshop/internal/providers/email"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/db/pagination"
	"github.com/mingchang/meatshop/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	dateLayout   = "2006-01-02"
	maxUserAgent = 255
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Cfg           config.Config
	Repo          domain.Repository
	Products      productdomain.Service
	Company       companydomain.Service
	Email         email.Provider
	Notifications *config.NotificationConfigHolder
	Metrics       *metrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	products      productdomain.Service
	company       companydomain.Service
	email         email.Provider
	notifications *config.NotificationConfigHolder
	metrics       *metrics.Metrics
	from          string
	loc           *time.Location
}

func New(p Params) domain.Service {
	log := p.Log.Named("inquiry.service")

	loc, err := time.LoadLocation(p.Cfg.TimeZone)
	if err != nil {
		log.Warn("unknown time zone, using UTC", zap.String("time_zone", p.Cfg.TimeZone), zap.Error(err))
		loc = time.UTC
	}

	return &Service{
		db:            p.DB,
		log:           log,
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		products:      p.Products,
		company:       p.Company,
		email:         p.Email,
		notifications: p.Notifications,
		metrics:       p.Metrics,
		from:          p.Cfg.Email.From,
		loc:           loc,
	}
}

func (s *Service) Submit(ctx context.Context, form domain.Form, meta domain.Meta) (*domain.ContactInquiry, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	inq, err := s.store(ctx, form, meta, domain.SourceContact, nil)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, inq, composeGeneral(inq, s.loc))
	return inq, nil
}

// SubmitForProduct stores an inquiry about one product. The product name is
// always taken from the catalog, never from the caller.
func (s *Service) SubmitForProduct(ctx context.Context, productSlug string, form domain.Form, meta domain.Meta) (*domain.ContactInquiry, error) {
	prefill, err := s.ProductPrefill(ctx, productSlug)
	if err != nil {
		return nil, err
	}

	form = form.Normalize()
	form.ProductName = clip(prefill.ProductName, domain.MaxProductNameLength)
	if form.Subject == "" {
		form.Subject = clip(prefill.Subject, domain.MaxSubjectLength)
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	inq, err := s.store(ctx, form, meta, domain.SourceProduct, &prefill.ProductID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, inq, composeProduct(inq, s.loc))
	return inq, nil
}

func (s *Service) ProductPrefill(ctx context.Context, productSlug string) (*domain.Prefill, error) {
	product, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, productdomain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return prefillFor(product), nil
}

func prefillFor(p *productdomain.Product) *domain.Prefill {
	return &domain.Prefill{
		ProductID:   p.ID,
		ProductSlug: p.Slug,
		ProductName: p.Name.Paired(),
		Subject:     fmt.Sprintf("詢問產品: %s Product Inquiry: %s", p.Name.ZH, p.Name.EN),
		MessagePlaceholder: fmt.Sprintf("您好，我想詢問關於「%s」的相關資訊...\n\nHello, I would like to inquire about \"%s\"...",
			p.Name.ZH, p.Name.EN),
	}
}

func (s *Service) store(ctx context.Context, form domain.Form, meta domain.Meta, source string, productID *int64) (*domain.ContactInquiry, error) {
	metadata := datatypes.JSONMap{domain.MetaSource: source}
	if ip := strings.TrimSpace(meta.ClientIP); ip != "" {
		metadata[domain.MetaClientIP] = ip
	}
	if ua := strings.TrimSpace(meta.UserAgent); ua != "" {
		metadata[domain.MetaUserAgent] = clip(ua, maxUserAgent)
	}
	if productID != nil {
		metadata[domain.MetaProductID] = strconv.FormatInt(*productID, 10)
	}

	now := s.clock.Now()
	inq := &domain.ContactInquiry{
		ID:                 s.genID.Generate().Int64(),
		Name:               form.Name,
		Phone:              form.Phone,
		Email:              form.Email,
		Subject:            form.Subject,
		Message:            form.Message,
		ProductName:        form.ProductName,
		LanguagePreference: form.LanguagePreference,
		Status:             domain.StatusNew,
		Metadata:           metadata,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Insert(ctx, s.db, inq); err != nil {
		return nil, err
	}

	s.metrics.RecordInquirySubmitted(ctx, source)
	logger.WithContext(ctx, s.log).Info("inquiry received",
		zap.Int64("inquiry_id", inq.ID),
		zap.String("source", source),
		zap.String("language", inq.LanguagePreference),
	)
	return inq, nil
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// notify delivers the shop notification. It never fails the submission.
func (s *Service) notify(ctx context.Context, inq *domain.ContactInquiry, n notification) {
	log := logger.WithContext(ctx, s.log).With(zap.Int64("inquiry_id", inq.ID))
	source := inq.Source()

	defer func() {
		if r := recover(); r != nil {
			log.Error("inquiry notification panicked", zap.Any("panic", r))
			s.metrics.RecordNotification(ctx, source, fmt.Errorf("panic: %v", r))
		}
	}()

	cfg := s.notifications.Get()
	if !cfg.Enabled {
		log.Debug("inquiry notification disabled")
		return
	}

	recipient := cfg.FallbackRecipient
	info, err := s.company.Get(ctx)
	if err != nil {
		log.Warn("company info lookup failed, using fallback recipient", zap.Error(err))
	} else if info != nil && info.Email != "" {
		recipient = info.Email
	}

	err = s.email.Send(context.WithoutCancel(ctx), email.Message{
		From:    s.from,
		To:      []string{recipient},
		Bcc:     cfg.Bcc,
		Subject: n.Subject,
		Text:    n.Body,
	})
	s.metrics.RecordNotification(ctx, source, err)
	if err != nil {
		log.Error("inquiry notification failed", zap.String("recipient", recipient), zap.Error(err))
		return
	}
	log.Info("inquiry notification sent", zap.String("recipient", recipient))
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListFilter{Query: strings.TrimSpace(req.Query)}

	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.Language); raw != "" {
		if !bilingual.ValidLanguage(raw) {
			return nil, domain.ErrInvalidLanguage
		}
		filter.Language = raw
	}
	from, err := s.parseDate(req.CreatedFrom)
	if err != nil {
		return nil, err
	}
	filter.CreatedFrom = from
	to, err := s.parseDate(req.CreatedTo)
	if err != nil {
		return nil, err
	}
	if to != nil {
		// created_to is inclusive of the whole day.
		end := to.AddDate(0, 0, 1)
		filter.CreatedTo = &end
	}

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	page, err := pagination.Resolve(req.Page, pagination.AdminSize(req.PageSize), total)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, s.db, filter, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i], now))
	}
	return &domain.ListResponse{Items: resp, Page: page}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item, s.clock.Now())
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.AdminNotes != nil {
			if err := s.repo.UpdateNotes(ctx, tx, item.ID, strings.TrimSpace(*req.AdminNotes), now); err != nil {
				return err
			}
		}
		if req.Status != nil {
			status := domain.Status(strings.TrimSpace(*req.Status))
			if !status.Valid() {
				return domain.ErrInvalidStatus
			}
			if _, err := s.repo.SetStatus(ctx, tx, []int64{item.ID}, status, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, strconv.FormatInt(item.ID, 10))
}

// BulkUpdateStatus applies a staff action to many inquiries in one statement.
func (s *Service) BulkUpdateStatus(ctx context.Context, req domain.BulkRequest) (*domain.BulkResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var (
		status domain.Status
		label  string
	)
	switch req.Action {
	case domain.ActionMarkInProgress:
		status, label = domain.StatusInProgress, "in progress"
	case domain.ActionMarkReplied:
		status, label = domain.StatusReplied, "replied"
	case domain.ActionMarkResolved:
		status, label = domain.StatusResolved, "resolved"
	default:
		return nil, domain.ErrInvalidAction
	}

	ids := make([]int64, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := parseID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	updated, err := s.repo.SetStatus(ctx, s.db, ids, status, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.log.Info("inquiries updated",
		zap.String("action", req.Action),
		zap.Int("requested", len(ids)),
		zap.Int64("updated", updated),
	)
	return &domain.BulkResult{
		Updated: updated,
		Message: fmt.Sprintf("%d inquiry(ies) marked as %s.", updated, label),
	}, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.ContactInquiry, error) {
	inquiryID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, inquiryID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// parseDate reads a YYYY-MM-DD day in the shop's time zone.
func (s *Service) parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, s.loc)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	t = t.UTC()
	return &t, nil
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id.Int64() <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func toResponse(c *domain.ContactInquiry, now time.Time) domain.Response {
	return domain.Response{
		ID:                  strconv.FormatInt(c.ID, 10),
		Name:                c.Name,
		Phone:               c.Phone,
		Email:               c.Email,
		Subject:             c.Subject,
		SubjectDisplay:      c.SubjectDisplay(),
		Message:             c.Message,
		MessagePreview:      c.MessagePreview(),
		ProductName:         c.ProductName,
		LanguagePreference:  c.LanguagePreference,
		LanguageDisplay:     domain.LanguageLabel(c.LanguagePreference),
		Status:              c.Status,
		StatusDisplay:       c.Status.Label(),
		AdminNotes:          c.AdminNotes,
		IsNew:               c.IsNew(now),
		ResponseTimeDisplay: c.ResponseTimeDisplay(),
		Metadata:            c.Metadata,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		RepliedAt:           c.RepliedAt,
	}
}
