package authorization

import (
	"context"
	"errors"
)

const (
	ObjectCategory     = "category"
	ObjectProduct      = "product"
	ObjectProductImage = "product_image"
	ObjectCompany      = "company"
	ObjectInquiry      = "inquiry"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type Service interface {
	// Authorize checks whether the staff subject holding role may perform
	// action on object.
	Authorize(ctx context.Context, subject, role, object, action string) error
}

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)
