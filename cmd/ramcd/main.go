// Command ramcd hosts the compile service over Connect/gRPC: the same
// ramc.Compile pipeline the CLI drives directly, reachable over HTTP for a
// build system that wants a long-lived compiler process instead of a
// process launch per translation unit.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gfour/souffle/cache"
	"github.com/gfour/souffle/config"
	"github.com/gfour/souffle/internal/logging"
	"github.com/gfour/souffle/service"
)

func main() {
	cfgPath := flag.String("config", "", "path to a TOML config file (default: built-in defaults)")
	addr := flag.String("addr", ":4568", "address to listen on")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ramcd: load config %s: %v\n", *cfgPath, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logging.Configure(cfg.Logging)

	log := logging.Named("ramcd")

	store := cache.New(cfg.Cache.Dir, cfg.Cache.Compress)
	svc := service.NewCompileService(store, cfg)

	mux := http.NewServeMux()
	path, handler := service.NewCompileServiceHandler(svc)
	mux.Handle(path, handler)

	log.Info("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Error("server exited: %v", err)
		fmt.Fprintf(os.Stderr, "ramcd: %v\n", err)
		os.Exit(1)
	}
}
