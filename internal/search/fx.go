package search

import (
	"github.com/talentsift/talentsift/internal/search/repository"
	"github.com/talentsift/talentsift/internal/search/service"
	"go.uber.org/fx"
)

var Module = fx.Module("search.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
