package category

import (
	"github.com/mingchang/meatshop/internal/category/repository"
	"github.com/mingchang/meatshop/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
