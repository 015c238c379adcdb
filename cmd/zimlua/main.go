// Command zimlua runs a Lua script with the zim module installed over the
// in-memory engine. Archives the script creates are reopenable by path
// within the same run.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Shopify/go-lua"

	"github.com/meigma/zimlua"
	"github.com/meigma/zimlua/memengine"
)

type config struct {
	module  string
	legacy  bool
	verbose bool
}

func main() {
	cfg := parseFlags()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: zimlua [flags] script.lua")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), cfg); err != nil {
		fmt.Fprintln(os.Stderr, "zimlua:", err)
		os.Exit(1)
	}
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.module, "module", "zim", "name of the Lua module table")
	flag.BoolVar(&cfg.legacy, "legacy-compression", false, "map integer compression codes with the legacy table (1 = lzma)")
	flag.BoolVar(&cfg.verbose, "v", false, "log bridge and engine events to stderr")
	flag.Parse()
	return cfg
}

func run(script string, cfg config) error {
	var logger *slog.Logger
	if cfg.verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	table := zimlua.CompressionTableModern
	if cfg.legacy {
		table = zimlua.CompressionTableLegacy
	}

	l := lua.NewState()
	lua.OpenLibraries(l)

	rt, err := zimlua.Install(l, memengine.New(memengine.WithLogger(logger)),
		zimlua.WithModuleName(cfg.module),
		zimlua.WithCompressionTable(table),
		zimlua.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	return rt.Do(func(l *lua.State) error {
		return lua.DoFile(l, script)
	})
}
