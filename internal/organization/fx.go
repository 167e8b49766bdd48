package organization

import (
	"github.com/talentsift/talentsift/internal/organization/repository"
	"github.com/talentsift/talentsift/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
