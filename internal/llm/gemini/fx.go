package gemini

import (
	"context"

	"github.com/talentsift/talentsift/internal/config"
	"go.uber.org/fx"
)

func Provide(cfg config.Config) (*Generator, error) {
	return NewGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
}

var Module = fx.Module("llm.gemini",
	fx.Provide(Provide),
)
