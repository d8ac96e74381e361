package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	v1 "porkbun_console/api/v1"
	"porkbun_console/internal/auth"
	"porkbun_console/internal/bulk"
	"porkbun_console/internal/cache"
	"porkbun_console/internal/config"
	"porkbun_console/internal/db"
	"porkbun_console/internal/logging"
	"porkbun_console/internal/nsaudit"
	"porkbun_console/internal/profile"
	"porkbun_console/internal/ws"
)

func main() {
	// 1. Load configuration (INI file when CONFIG_INI is set, env otherwise)
	var cfg *config.Config
	var err error
	if iniPath := os.Getenv("CONFIG_INI"); iniPath != "" {
		cfg, err = config.LoadFromINI(iniPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logging.Setup(cfg.Log)
	logrus.Info("✓ Configuration loaded")

	// 2. Initialize JWT
	auth.InitJWT(cfg.JWT.Secret)

	// 3. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN); err != nil {
		logrus.Fatalf("Failed to initialize MySQL: %v", err)
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(db.DB); err != nil {
			logrus.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// 4. Initialize Redis
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logrus.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer cache.Close()

	// 5. Open the credential profile store
	profileDir := cfg.ProfileDir
	if profileDir == "" {
		profileDir, err = profile.DefaultDir()
		if err != nil {
			logrus.Fatalf("Failed to resolve profile directory: %v", err)
		}
	}
	profiles, err := profile.NewStore(profileDir)
	if err != nil {
		logrus.Fatalf("Failed to open profile store: %v", err)
	}

	// 6. Socket.IO server for progress events
	if err := ws.InitServer(); err != nil {
		logrus.Fatalf("Failed to initialize Socket.IO: %v", err)
	}

	// 7. Audit worker (shared between the API and the periodic runner)
	var resolver *nsaudit.Resolver
	if cfg.Audit.VerifyDNS {
		resolver = nsaudit.NewResolver(cfg.Audit.ResolverAddr)
	}
	gateway := &profile.ActiveGateway{Store: profiles, BaseURL: cfg.Porkbun.BaseURL}
	auditStore := nsaudit.NewStore(cfg.Audit.CacheFile)
	auditWorker := nsaudit.NewWorker(&nsaudit.Config{
		Client:               gateway,
		Store:                auditStore,
		Logger:               logrus.NewEntry(logrus.StandardLogger()),
		Resolver:             resolver,
		BatchSize:            cfg.Audit.BatchSize,
		CheckDelay:           time.Duration(cfg.Audit.CheckDelayMs) * time.Millisecond,
		BatchDelay:           time.Duration(cfg.Audit.BatchDelayMs) * time.Millisecond,
		RetryInitialInterval: time.Duration(cfg.Audit.RetryInitialSec) * time.Second,
		MaxAttempts:          cfg.Audit.MaxAttempts,
		OnProgress: func(p nsaudit.Progress) {
			ws.PublishAuditProgress(p.Current, p.Total, p.Message)
		},
	})

	if cfg.Audit.PeriodicEnabled {
		periodic := nsaudit.NewPeriodicWorker(
			auditWorker,
			func(ctx context.Context) ([]string, error) {
				return gateway.ListDomainNames(ctx)
			},
			logrus.NewEntry(logrus.StandardLogger()),
			cfg.Audit.PeriodicIntervalSec,
		)
		periodic.Start()
		defer periodic.Stop()
	}

	// 8. Bulk job manager
	bulkManager := bulk.NewManager(cfg.Bulk.BackupDir)

	// 9. HTTP router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	v1.SetupRouter(r, &v1.Deps{
		DB:          db.DB,
		Cfg:         cfg,
		Profiles:    profiles,
		BulkManager: bulkManager,
		AuditWorker: auditWorker,
		AuditStore:  auditStore,
	})

	// Socket.IO endpoint with JWT handshake validation
	r.GET("/socket.io/*any", gin.WrapH(ws.WrapWithAuth(ws.Server)))
	r.POST("/socket.io/*any", gin.WrapH(ws.WrapWithAuth(ws.Server)))

	logrus.Infof("✓ Server starting on %s", cfg.HTTPAddr)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	if err := srv.ListenAndServe(); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
