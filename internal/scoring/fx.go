package scoring

import (
	"github.com/talentsift/talentsift/internal/config"
	"github.com/talentsift/talentsift/internal/llm/gemini"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Provide(generator *gemini.Generator, cfg config.Config, log *zap.Logger) *Engine {
	return New(generator, cfg.ScoringRubric, log)
}

var Module = fx.Module("scoring",
	fx.Provide(Provide),
)
