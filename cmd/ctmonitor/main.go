// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// The ctmonitor binary watches a set of Certificate Transparency logs and
// checks that each one only ever grows its tree in an append-only way.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/transparency-dev/ctverify/client"
	"github.com/transparency-dev/ctverify/cmd"
	"github.com/transparency-dev/ctverify/monitor"
	prommetrics "github.com/transparency-dev/ctverify/monitoring/prometheus"
	"github.com/transparency-dev/ctverify/storage"
	"github.com/transparency-dev/ctverify/storage/memory"
	"github.com/transparency-dev/ctverify/storage/redis"
	"github.com/transparency-dev/ctverify/storage/sqlstore"
)

var supportedStorage = []string{"memory", "sql", "redis"}

// Flags
var (
	logsConfig      = flag.String("logs_config", "", "YAML file listing the logs to monitor")
	storageSystem   = flag.String("storage", "memory", fmt.Sprintf("Where trusted STHs are kept. One of: %v", strings.Join(supportedStorage, ", ")))
	sqlDriver       = flag.String("sql_driver", "sqlite", "database/sql driver for -storage=sql: mysql, postgres or sqlite")
	sqlDSN          = flag.String("sql_dsn", "", "Data source name for -storage=sql")
	redisAddr       = flag.String("redis_addr", "localhost:6379", "Redis server address for -storage=redis")
	redisPrefix     = flag.String("redis_prefix", "ctmonitor/", "Prefix of the Redis keys")
	metricsEndpoint = flag.String("metrics_endpoint", "localhost:8080", "Endpoint serving Prometheus metrics on /metrics, empty to disable")
	httpTimeout     = flag.Duration("http_timeout", 30*time.Second, "Timeout of requests to the logs")

	configFile = flag.String("config", "", "Config file containing flags, file contents can be overridden by command line flags")
)

// Errors
var (
	errLogsConfigMissing  = errors.New("logs config is missing: use the -logs_config flag to set it")
	errUnsupportedStorage = fmt.Errorf("storage set by the -storage flag is unsupported: use one of: %v", strings.Join(supportedStorage, ", "))
	errSQLDSNMissing      = errors.New("SQL data source is missing: use the -sql_dsn flag to set it")
)

func verifyFlags() error {
	if *logsConfig == "" {
		return errLogsConfigMissing
	}
	switch *storageSystem {
	case "memory", "redis":
	case "sql":
		if *sqlDSN == "" {
			return errSQLDSNMissing
		}
	default:
		return errUnsupportedStorage
	}
	return nil
}

// newStoreFromFlags returns the configured STH store and a function
// releasing it.
func newStoreFromFlags(ctx context.Context) (storage.STHStore, func(), error) {
	switch *storageSystem {
	case "memory":
		return memory.New(), func() {}, nil
	case "sql":
		s, err := sqlstore.Open(ctx, *sqlDriver, *sqlDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				klog.Warningf("Close(): %v", err)
			}
		}, nil
	case "redis":
		rc := goredis.NewClient(&goredis.Options{Addr: *redisAddr})
		s := redis.New(rc, *redisPrefix)
		if err := s.Load(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, fmt.Errorf("loading script into redis at %s: %v", *redisAddr, err)
		}
		return s, func() {
			if err := rc.Close(); err != nil {
				klog.Warningf("Close(): %v", err)
			}
		}, nil
	}
	return nil, nil, errUnsupportedStorage
}

// newMonitors builds a monitor for every log in cfg, all sharing store and
// metrics.
func newMonitors(cfg *Config, store storage.STHStore, metrics *monitor.Metrics, hc *http.Client) ([]*monitor.Monitor, error) {
	monitors := make([]*monitor.Monitor, 0, len(cfg.Logs))
	for _, l := range cfg.Logs {
		der, err := l.PublicKeyDER()
		if err != nil {
			return nil, fmt.Errorf("log %q: reading public key: %v", l.Name, err)
		}
		lv, err := client.NewLogVerifierFromDER(der)
		if err != nil {
			return nil, fmt.Errorf("log %q: %v", l.Name, err)
		}
		lc, err := client.New(l.URL, hc, client.Options{})
		if err != nil {
			return nil, fmt.Errorf("log %q: %v", l.Name, err)
		}
		monitors = append(monitors, monitor.New(lc, lv, store, monitor.Options{
			Name:          l.Name,
			PollInterval:  l.PollInterval,
			VerifyEntries: l.VerifyEntries,
			BatchSize:     l.BatchSize,
			Metrics:       metrics,
		}))
		klog.Infof("Monitoring %s at %s (log ID %v)", l.Name, l.URL, lv.LogID())
	}
	return monitors, nil
}

// runMonitors runs every monitor until ctx is done.
func runMonitors(ctx context.Context, monitors []*monitor.Monitor) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, m := range monitors {
		m := m
		g.Go(func() error { return m.Run(ctx) })
	}
	return g.Wait()
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// serveMetrics serves /metrics from reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			klog.Warningf("Shutdown(): %v", err)
		}
	}()
	klog.Infof("Serving metrics at %s/metrics", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func runMonitor(ctx context.Context) error {
	if *configFile != "" {
		if err := cmd.ParseFlagFile(*configFile); err != nil {
			return fmt.Errorf("failed to load flags from config file %q: %s", *configFile, err)
		}
	}
	if err := verifyFlags(); err != nil {
		return err
	}

	cfg, err := LoadConfig(*logsConfig)
	if err != nil {
		return fmt.Errorf("failed to load logs config: %v", err)
	}
	store, closeStore, err := newStoreFromFlags(ctx)
	if err != nil {
		return fmt.Errorf("failed to open storage: %v", err)
	}
	defer closeStore()

	reg := newRegistry()
	metrics := monitor.NewMetrics(prommetrics.MetricFactory{Prefix: "ctmonitor_", Registerer: reg})
	monitors, err := newMonitors(cfg, store, metrics, &http.Client{Timeout: *httpTimeout})
	if err != nil {
		return fmt.Errorf("failed to initialize monitors: %v", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if *metricsEndpoint != "" {
		g.Go(func() error { return serveMetrics(ctx, *metricsEndpoint, reg) })
	}
	g.Go(func() error { return runMonitors(ctx, monitors) })
	return g.Wait()
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := runMonitor(ctx); err != nil {
		klog.Exit(err)
	}
}
