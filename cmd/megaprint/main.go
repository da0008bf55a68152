package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/clock"
	"github.com/megaprint/megaprint/internal/config"
	"github.com/megaprint/megaprint/internal/migration"
	"github.com/megaprint/megaprint/internal/observability"
	"github.com/megaprint/megaprint/internal/server"
	"github.com/megaprint/megaprint/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
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
