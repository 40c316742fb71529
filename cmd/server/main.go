package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/atlekbai/report_engine/internal/config"
	"github.com/atlekbai/report_engine/internal/db"
	"github.com/atlekbai/report_engine/internal/handler"
	"github.com/atlekbai/report_engine/internal/middleware"
	"github.com/atlekbai/report_engine/internal/report"
	"github.com/atlekbai/report_engine/internal/schema"
	"github.com/atlekbai/report_engine/internal/server"
	"github.com/atlekbai/report_engine/internal/service"
	"github.com/atlekbai/report_engine/internal/store"
)

var (
	configDir = flag.String("config", ".", "directory holding config.yaml")
	migrate   = flag.Bool("migrate", false, "apply schema migrations before serving")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}
	logx.MustSetup(logx.LogConf{ServiceName: "report-engine", Mode: cfg.LogMode, Encoding: "plain"})
	defer logx.Close()

	conn, err := db.Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		fatalf("failed to connect to database: %v", err)
	}
	defer conn.Close()

	if *migrate {
		if err := conn.Migrate(cfg.DatabaseURL); err != nil {
			fatalf("failed to migrate: %v", err)
		}
		logx.Info("migrations applied")
	}

	q := conn.Querier()
	executor := report.NewExecutor(
		schema.CRM(),
		store.NewCatalog(q, conn.Dialect),
		store.NewSQLStore(q, conn.Dialect),
		cfg.MaxRows,
	)

	router := mux.NewRouter()
	handler.New(executor, cfg.DefaultCurrency).Routes(router)

	interceptors := []connect.Interceptor{
		server.LoggingInterceptor(),
	}
	services := []server.ConnectService{
		service.NewReportService(executor),
	}
	root := server.NewMux(router, interceptors, services...)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.Recovery(middleware.Logging(middleware.CORS(root))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logx.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logx.Infof("listening on %s (%s)", cfg.Addr(), conn.Dialect)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		fatalf("server error: %v", err)
	}
}

func fatalf(format string, args ...any) {
	logx.Errorf(format, args...)
	logx.Close()
	os.Exit(1)
}
