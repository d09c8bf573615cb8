package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/lox/pokerderby/internal/game"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" help:"Run the multi-room game server"`
	Play    PlayCmd          `cmd:"" help:"Play a local game in the terminal"`
	Config  ConfigCmd        `cmd:"" help:"Validate a config file and print the resolved settings"`
}

func main() {
	// A .env file is optional; values in it feed the env-backed flags
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerderby"),
		kong.Description("Bet on hold'em hands as the board runs out"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
			"room":    game.DefaultRoomCode,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
