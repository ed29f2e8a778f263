package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	staffdomain "github.com/mingchang/meatshop/internal/staff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads policies from the casbin_rule table and makes sure the
// built-in role policies exist.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, subject, role, object, action string) error {
	subject = strings.TrimSpace(subject)
	role = strings.TrimSpace(role)
	if subject == "" || !staffdomain.ValidRole(role) {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	if err := s.ensureGrouping(subject, roleName(role)); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps exactly one role link for subject, matching the role
// currently stored on the staff user.
func (s *ServiceImpl) ensureGrouping(subject, role string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == role {
			continue
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(rule[0], rule[1]); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, role)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, role)
	return err
}

func roleName(role string) string {
	return "role:" + strings.ToLower(role)
}

// seedPolicies adds the built-in role rules, skipping any already stored.
func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	staff := roleName(staffdomain.RoleStaff)
	manager := roleName(staffdomain.RoleManager)

	if _, err := enforcer.AddPoliciesEx([][]string{
		// Staff read everything and work the inquiry queue and image gallery.
		{staff, ObjectCategory, ActionView},
		{staff, ObjectProduct, ActionView},
		{staff, ObjectCompany, ActionView},
		{staff, ObjectInquiry, "*"},
		{staff, ObjectProductImage, "*"},

		{manager, ObjectCategory, "*"},
		{manager, ObjectProduct, "*"},
		{manager, ObjectCompany, "*"},
	}); err != nil {
		return err
	}
	_, err := enforcer.AddGroupingPoliciesEx([][]string{{manager, staff}})
	return err
}
