package product

import (
	"github.com/mingchang/meatshop/internal/product/repository"
	"github.com/mingchang/meatshop/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
