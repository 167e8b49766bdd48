package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/talentsift/talentsift/internal/config"
	"github.com/talentsift/talentsift/internal/logger"
	"github.com/talentsift/talentsift/internal/migration"
	"github.com/talentsift/talentsift/internal/server"
	"github.com/talentsift/talentsift/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
