package queryparse

import (
	"github.com/talentsift/talentsift/internal/llm/gemini"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Provide(generator *gemini.Generator, log *zap.Logger) *Parser {
	return New(generator, log)
}

var Module = fx.Module("queryparse",
	fx.Provide(Provide),
)
