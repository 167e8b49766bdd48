package auth

import (
	"github.com/talentsift/talentsift/internal/auth/repository"
	"github.com/talentsift/talentsift/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
