package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woutervis/wotohe/internal/backup"
	"github.com/woutervis/wotohe/internal/database"
	"github.com/woutervis/wotohe/internal/logging"
	"github.com/woutervis/wotohe/internal/push"
	"github.com/woutervis/wotohe/internal/rotation"
	"github.com/woutervis/wotohe/internal/server"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	generateVAPID := flag.Bool("generate-vapid", false, "generate a VAPID key pair and exit")
	flag.Parse()

	if *generateVAPID {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("generate VAPID keys: %v", err)
		}
		fmt.Printf("WOTOHE_VAPID_PUBLIC_KEY=%s\nWOTOHE_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	logger := logging.Setup(envOr("WOTOHE_LOG_LEVEL", "info"))

	port := envOr("WOTOHE_PORT", "8080")
	dbPath := envOr("WOTOHE_DB_PATH", "wotohe.db")

	cycle, err := rotation.ParseCycle(envOr("WOTOHE_ROTATION", "Wouter,Tomas,Henrik"))
	if err != nil {
		log.Fatalf("invalid rotation configuration: %v", err)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("WOTOHE_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("WOTOHE_VAPID_PRIVATE_KEY"),
		Subscriber:      os.Getenv("WOTOHE_PUSH_SUBSCRIBER"),
	}

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("WOTOHE_S3_ENDPOINT"),
			Bucket:    os.Getenv("WOTOHE_S3_BUCKET"),
			Region:    envOr("WOTOHE_S3_REGION", "auto"),
			AccessKey: os.Getenv("WOTOHE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("WOTOHE_S3_SECRET_KEY"),
		},
		Passphrase: os.Getenv("WOTOHE_BACKUP_PASSPHRASE"),
	}

	srv := server.New(db, cycle, pushCfg, backupCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("failed to start services: %v", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("wotohe running", "addr", "http://localhost:"+port, "rotation", cycle.Names())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
	srv.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
