package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"colognehub/internal/apiclient"
	"colognehub/internal/config"
	"colognehub/internal/domain"
	"colognehub/internal/importer"
	"colognehub/internal/logging"
	"colognehub/internal/service/admin"
	"colognehub/internal/service/auth"
	"colognehub/internal/session"
)

const (
	modeServer = "server"
	modeAPI    = "api"
)

func main() {
	var (
		filePath    string
		mode        string
		email       string
		dryRun      bool
		concurrency int
	)
	flag.StringVar(&filePath, "file", "", "Path to a product .csv or .xlsx sheet")
	flag.StringVar(&mode, "mode", modeServer, "server: send the sheet to the bulk upload endpoint; api: upsert products one by one")
	flag.StringVar(&email, "email", os.Getenv("ADMIN_EMAIL"), "Admin account email")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the sheet without uploading")
	flag.IntVar(&concurrency, "concurrency", 4, "Parallel requests in api mode")
	flag.Parse()

	if filePath == "" || (mode != modeServer && mode != modeAPI) {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}).Named("bulkimport")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.Fatal("read file", zap.Error(err))
	}
	format, err := importer.FormatOf(filePath)
	if err != nil {
		logger.Fatal("detect format", zap.Error(err))
	}
	products, problems, err := importer.Parse(bytes.NewReader(data), format)
	if err != nil {
		logger.Fatal("parse sheet", zap.Error(err))
	}
	for _, p := range problems {
		logger.Warn("invalid row", zap.Int("row", p.Row), zap.Error(p.Err))
	}
	if dryRun {
		fmt.Printf("%s: %d valid products, %d invalid rows\n", filepath.Base(filePath), len(products), len(problems))
		return
	}

	store := session.NewMemory()
	defer store.Close()
	client := apiclient.New(cfg.APIBaseURL, store,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithLogger(logger.Named("api")),
	)
	if err := login(ctx, client, store, email, os.Getenv("ADMIN_PASSWORD"), logger); err != nil {
		logger.Fatal("login", zap.Error(err))
	}
	adminService := admin.New(client, admin.DefaultLowStock, logger)

	start := time.Now()
	switch mode {
	case modeServer:
		res, err := adminService.BulkUpload(ctx, filepath.Base(filePath), data)
		if err != nil {
			logger.Fatal("bulk upload failed", zap.Error(err), zap.Strings("problems", res.Problems))
		}
		fmt.Printf("%s (%d rows) in %s\n", res.Message, res.Rows, time.Since(start).Truncate(time.Millisecond))
	case modeAPI:
		res, err := importer.New(adminService, concurrency, logger).Run(ctx, products)
		if err != nil {
			logger.Fatal("import failed", zap.Error(err))
		}
		for _, f := range res.Failed {
			logger.Warn("product not imported", zap.Int("position", f.Row), zap.Error(f.Err))
		}
		fmt.Printf("Imported %d products (%d failed) in %s\n", res.Imported, len(res.Failed), time.Since(start).Truncate(time.Millisecond))
	}
}

func login(ctx context.Context, client *apiclient.Client, store *session.Store, email, password string, logger *zap.Logger) error {
	if email == "" || password == "" {
		return fmt.Errorf("set -email (or ADMIN_EMAIL) and ADMIN_PASSWORD")
	}
	res, err := auth.New(client, store, nil, logger).Login(ctx, auth.LoginInput{Email: email, Password: password})
	if err != nil {
		return err
	}
	if res.Session.Role != domain.RoleAdmin {
		return fmt.Errorf("%s is not an admin account", email)
	}
	return nil
}
