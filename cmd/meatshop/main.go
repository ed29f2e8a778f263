package main

import (
	_ "time/tzdata"

	"github.com/bwmarrin/snowflake"
	"github.com/mingchang/meatshop/internal/clock"
	"github.com/mingchang/meatshop/internal/config"
	"github.com/mingchang/meatshop/internal/migration"
	"github.com/mingchang/meatshop/internal/observability"
	"github.com/mingchang/meatshop/internal/server"
	"github.com/mingchang/meatshop/pkg/db"
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
