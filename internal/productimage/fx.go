package productimage

import (
	"github.com/mingchang/meatshop/internal/productimage/repository"
	"github.com/mingchang/meatshop/internal/productimage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("productimage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
