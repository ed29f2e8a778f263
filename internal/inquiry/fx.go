package inquiry

import (
	"github.com/mingchang/meatshop/internal/inquiry/repository"
	"github.com/mingchang/meatshop/internal/inquiry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("inquiry.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
