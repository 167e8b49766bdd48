package credit

import (
	"github.com/talentsift/talentsift/internal/credit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("credit.service",
	fx.Provide(service.New),
)
