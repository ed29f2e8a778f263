package company

import (
	"github.com/mingchang/meatshop/internal/company/repository"
	"github.com/mingchang/meatshop/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
