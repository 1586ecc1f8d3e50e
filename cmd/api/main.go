package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emblem/api/internal/app"
	"emblem/api/internal/blob"
	"emblem/api/internal/brandlookup"
	"emblem/api/internal/config"
	"emblem/api/internal/designimport"
	"emblem/api/internal/email"
	"emblem/api/internal/esign"
	"emblem/api/internal/export"
	"emblem/api/internal/search"
	"emblem/api/internal/session"
	"emblem/api/internal/store"
)

func main() {
	cfg := config.Load()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := store.Open(bootCtx, cfg.DatabaseURL)
	if err != nil {
		bootCancel()
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(bootCtx, db, cfg.MigrationsDir); err != nil {
		bootCancel()
		log.Fatalf("run migrations: %v", err)
	}
	bootCancel()

	dataStore := store.NewPostgresStore(db)

	var service *app.Service
	if os.Getenv("REDIS_URL") != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer redisStore.Close()
		service = app.NewWithSessionStore(cfg, dataStore, redisStore)
		log.Printf("refresh sessions: redis")
	} else {
		service = app.New(cfg, dataStore)
		log.Printf("refresh sessions: postgres")
	}

	blobStore, err := blob.New(blob.Config{
		Endpoint:  cfg.BlobEndpoint,
		AccessKey: cfg.BlobAccessKey,
		SecretKey: cfg.BlobSecretKey,
		Bucket:    cfg.BlobBucket,
		UseSSL:    cfg.BlobUseSSL,
	})
	if err != nil {
		log.Fatalf("connect object storage: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := blobStore.EnsureBucket(ctx); err != nil {
		cancel()
		log.Fatalf("ensure bucket: %v", err)
	}
	cancel()
	service.SetBlobStore(blobStore)

	pgfts := search.NewPgFTS(db)
	var meili *search.Meili
	if os.Getenv("MEILI_URL") != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		log.Printf("search: meilisearch with postgres fallback")
	} else {
		log.Printf("search: postgres full-text")
	}
	searchService := search.NewService(meili, pgfts)
	service.SetSearch(searchService)
	if meili != nil {
		go searchService.ReindexAllFromPG(context.Background())
	}

	mail := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	service.SetMailer(mail)
	if !mail.IsConfigured() {
		log.Printf("email: not configured, dev token bypass active")
	}

	service.SetBrandLookup(brandlookup.New(cfg.BrandLookupURL, cfg.BrandLookupKey))
	service.SetESign(esign.New(cfg.ESignURL, cfg.ESignKey))
	service.SetDesignAPI(designimport.New(cfg.DesignAPIURL, cfg.DesignAPIToken))
	service.SetExporter(export.NewService(&guideStore{store: dataStore}, blobStore))

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Emblem API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
