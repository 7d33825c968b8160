package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"checkin-desk/internal/checkin"
	"checkin-desk/internal/config"
	"checkin-desk/internal/logstore"
	"checkin-desk/internal/notify"
	"checkin-desk/internal/roster"
	"checkin-desk/internal/server"
	"checkin-desk/internal/sheets"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sheetsClient, err := sheets.New(cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID)
	if err != nil {
		log.Fatalf("sheets: %v", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.TelegramToken != "" && cfg.AdminChatID != 0 {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.AdminChatID)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		notifier = tg
	}

	backup := logstore.NewBackup(cfg.BackupCSVPath)
	store := logstore.New(sheetsClient, backup, cfg.LogCacheTTL)
	ros := roster.New(sheetsClient, cfg.RosterTTL)
	pipe := checkin.New(cfg.SessionCodes, store, notifier)

	router := server.NewRouter(server.Deps{
		Cfg:      cfg,
		Pipeline: pipe,
		Roster:   ros,
		Store:    store,
		Backup:   backup,
		Notifier: notifier,
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)

	log.Println("bye")
}
