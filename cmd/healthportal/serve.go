package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	v1 "github.com/dmehra2102/prod-golang-projects/healthportal/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/repository/guarded"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/seed"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/tracer"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	sandbox         bool
	dataDir         string
	sandboxPassword string
}

func serveCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.sandbox, "sandbox", false, "serve from an in-memory store instead of PostgreSQL")
	cmd.Flags().StringVar(&opts.dataDir, "data", "", "export directory loaded into the sandbox store")
	cmd.Flags().StringVar(&opts.sandboxPassword, "sandbox-password", "", "create one demo account per portal with this password (sandbox only)")
	return cmd
}

// stores is the set of repositories the services run on, whichever backend
// provides them.
type stores struct {
	citizens   citizen.Repository
	records    hr.Repository
	institutes institute.Repository
	accounts   service.AccountRepository
	audit      service.AuditRepository
	health     func(ctx context.Context) error
	close      func()
}

func runServer(ctx context.Context, opts serveOptions) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := tracer.Init(cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initialising tracer: %w", err)
	}
	defer func() {
		if err := tracer.Shutdown(tp, cfg.Server.ShutdownTimeout); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	m := metrics.NewCollector(cfg.App.Name, prometheus.DefaultRegisterer)

	var st *stores
	if opts.sandbox {
		st, err = openSandbox(ctx, opts, log)
	} else {
		st, err = openPostgres(cfg, m, log)
	}
	if err != nil {
		return err
	}
	defer st.close()

	citizens, records, institutes := st.citizens, st.records, st.institutes
	if cfg.Store.BreakerEnabled {
		citizens = guarded.NewCitizenRepository(citizens, cfg.Store, m, log)
		records = guarded.NewRecordRepository(records, cfg.Store, m, log)
		institutes = guarded.NewInstituteRepository(institutes, cfg.Store, m, log)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT)
	auditSvc := service.NewAuditService(st.audit, m, log.Named("audit"))
	defer auditSvc.Shutdown()

	authSvc := service.NewAuthService(st.accounts, jwtManager, auditSvc, log.Named("auth"))
	identitySvc := service.NewIdentityService(citizens, cfg.Store.CallTimeout, log.Named("identity"))
	recordSvc := service.NewRecordService(records, auditSvc, m, cfg.Store.CallTimeout, log.Named("records"))
	lookupSvc := service.NewLookupService(identitySvc, recordSvc, service.NewSearchTracker(), auditSvc, m, log.Named("lookup"))
	reportSvc := service.NewReportService(citizens, institutes, records, m, cfg.Store.CallTimeout, log.Named("reports"))

	if opts.sandbox && opts.sandboxPassword != "" {
		if err := createDemoAccounts(ctx, authSvc, citizens, institutes, opts.sandboxPassword, log); err != nil {
			return err
		}
	}

	router := v1.NewRouter(v1.RouterDeps{
		Config:      cfg,
		Log:         log.Named("http"),
		Metrics:     m,
		MetricsHTTP: metrics.MetricsHandler(prometheus.DefaultGatherer),
		JWT:         jwtManager,
		Health:      st.health,
		Auth:        authSvc,
		Identity:    identitySvc,
		Records:     recordSvc,
		Lookup:      lookupSvc,
		Reports:     reportSvc,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.Bool("sandbox", opts.sandbox))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func openPostgres(cfg *config.Config, m *metrics.Collector, log *zap.Logger) (*stores, error) {
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	pg := postgres.NewStore(db, m)
	return &stores{
		citizens:   pg.Citizens,
		records:    pg.Records,
		institutes: pg.Institutes,
		accounts:   pg.Accounts,
		audit:      pg.Audit,
		health:     sqlDB.PingContext,
		close: func() {
			if err := sqlDB.Close(); err != nil {
				log.Warn("closing database", zap.Error(err))
			}
		},
	}, nil
}

func openSandbox(ctx context.Context, opts serveOptions, log *zap.Logger) (*stores, error) {
	mem := memory.NewStore()
	if opts.dataDir != "" {
		ds, err := seed.LoadDir(opts.dataDir, log.Named("seed"))
		if err != nil {
			return nil, err
		}
		if _, err := seed.Run(ctx, mem.Importer(), ds, log.Named("seed")); err != nil {
			return nil, err
		}
	}
	log.Warn("serving from the in-memory sandbox store; data is lost on exit")

	return &stores{
		citizens:   mem.Citizens(),
		records:    mem.Records(),
		institutes: mem.Institutes(),
		accounts:   mem.Accounts(),
		audit:      mem.Audit(),
		close:      func() {},
	}, nil
}

// createDemoAccounts signs up a government officer, the first institute and
// the first citizen of the sandbox data.
func createDemoAccounts(ctx context.Context, authSvc *service.AuthService, citizens citizen.Repository, institutes institute.Repository, password string, log *zap.Logger) error {
	cmds := []*service.CreateAccountCommand{{
		Role:        domain.RoleGovernment,
		Login:       "officer@health.gov.np",
		Password:    password,
		DisplayName: "Demo Officer",
	}}

	if list, err := institutes.List(ctx, nil); err == nil && len(list) > 0 {
		inst := list[0]
		cmds = append(cmds, &service.CreateAccountCommand{
			Role:        domain.RoleHospital,
			Login:       inst.LicenseNumber,
			Password:    password,
			DisplayName: inst.Name,
			InstituteID: &inst.ID,
		})
	}
	if list, err := citizens.List(ctx); err == nil && len(list) > 0 {
		c := list[0]
		cmds = append(cmds, &service.CreateAccountCommand{
			Role:        domain.RoleCitizen,
			Login:       c.NationalID,
			Password:    password,
			DisplayName: c.FullName,
		})
	}

	for _, cmd := range cmds {
		if _, err := authSvc.CreateAccount(ctx, cmd); err != nil {
			return fmt.Errorf("creating demo %s account: %w", cmd.Role, err)
		}
		log.Info("demo account created", zap.String("portal", string(cmd.Role)), zap.String("login", cmd.Login))
	}
	return nil
}
