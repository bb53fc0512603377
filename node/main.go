package main

import (
	"context"
	"flag"
	"net/http"
	npprof "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vigcoin/coin/config"
	"github.com/vigcoin/coin/node/app"
	"go.uber.org/zap"
)

var (
	configDirectory = flag.String(
		"config",
		filepath.Join(".", ".config"),
		"the configuration directory",
	)
	cpuprofile = flag.String(
		"cpuprofile",
		"",
		"write cpu profile to file",
	)
	pprofServer = flag.String(
		"pprof-server",
		"",
		"enable pprof server on specified address (e.g. localhost:6060)",
	)
	prometheusServer = flag.String(
		"prometheus-server",
		"",
		"enable prometheus server on specified address (e.g. localhost:8080), overrides the config",
	)
	debug = flag.Bool(
		"debug",
		false,
		"sets log output to debug (verbose)",
	)
)

func main() {
	flag.Parse()

	bootstrap := zap.Must(zap.NewProduction())

	nodeConfig, err := config.LoadConfig(*configDirectory)
	if err != nil {
		bootstrap.Fatal("failed to load config", zap.Error(err))
	}

	logger, closer, err := nodeConfig.CreateLogger(*debug)
	if err != nil {
		bootstrap.Fatal("failed to create logger", zap.Error(err))
	}
	defer closer.Close()
	defer logger.Sync()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logger.Fatal("failed to create cpu profile file", zap.Error(err))
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal("failed to start cpu profile", zap.Error(err))
		}
		defer pprof.StopCPUProfile()
	}

	if *pprofServer != "" {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/debug/pprof/", npprof.Index)
			mux.HandleFunc("/debug/pprof/cmdline", npprof.Cmdline)
			mux.HandleFunc("/debug/pprof/profile", npprof.Profile)
			mux.HandleFunc("/debug/pprof/symbol", npprof.Symbol)
			mux.HandleFunc("/debug/pprof/trace", npprof.Trace)
			logger.Fatal(
				"failed to start pprof server",
				zap.Error(http.ListenAndServe(*pprofServer, mux)),
			)
		}()
	}

	metricsAddr := nodeConfig.MetricsListenAddr
	if *prometheusServer != "" {
		metricsAddr = *prometheusServer
	}
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Fatal(
				"failed to start prometheus server",
				zap.Error(http.ListenAndServe(metricsAddr, mux)),
			)
		}()
	}

	node, err := app.NewNode(logger, nodeConfig)
	if err != nil {
		logger.Fatal("failed to create node", zap.Error(err))
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	if err := node.Start(context.Background()); err != nil {
		node.Stop()
		logger.Fatal("failed to start node", zap.Error(err))
	}

	select {
	case <-done:
		logger.Info("shutdown signal received")
	case err := <-node.Errors():
		logger.Error("node halted", zap.Error(err))
	}

	node.Stop()
}
