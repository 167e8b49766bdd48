package pipeline

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/talentsift/talentsift/internal/config"
	"github.com/talentsift/talentsift/internal/liveevents"
	"github.com/talentsift/talentsift/internal/metrics"
	"github.com/talentsift/talentsift/internal/queryparse"
	"github.com/talentsift/talentsift/internal/scoring"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	"github.com/talentsift/talentsift/internal/sourcing"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   searchdomain.Repository
	Hub    *liveevents.Hub
	Parser QueryParser
	Source CandidateSourcer
	Scorer CandidateScorer
	Stats  *metrics.PipelineMetrics
	Cfg    config.Config
}

func Provide(p Params) *Runner {
	return NewRunner(p.DB, p.Log, p.GenID, p.Repo, p.Hub, p.Parser, p.Source, p.Scorer, p.Stats, Config{
		RunTimeout: p.Cfg.PipelineRunTimeout,
	})
}

var Module = fx.Module("pipeline",
	fx.Provide(
		func(p *queryparse.Parser) QueryParser { return p },
		func(c *sourcing.Coordinator) CandidateSourcer { return c },
		func(e *scoring.Engine) CandidateScorer { return e },
	),
	fx.Provide(Provide),
	fx.Invoke(func(lc fx.Lifecycle, r *Runner) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				r.Wait()
				return nil
			},
		})
	}),
)
