package sharelink

import (
	"github.com/talentsift/talentsift/internal/sharelink/repository"
	"github.com/talentsift/talentsift/internal/sharelink/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sharelink.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
