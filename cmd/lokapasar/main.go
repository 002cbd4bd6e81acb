package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/lokapasar/internal/clock"
	"github.com/smallbiznis/lokapasar/internal/migration"
	"github.com/smallbiznis/lokapasar/internal/observability"
	"github.com/smallbiznis/lokapasar/internal/server"
	"github.com/smallbiznis/lokapasar/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Schema and bootstrap data
		migration.Module,

		// HTTP surface; pulls in every domain module
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
