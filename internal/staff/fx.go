package staff

import (
	"github.com/mingchang/meatshop/internal/staff/repository"
	"github.com/mingchang/meatshop/internal/staff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("staff.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
