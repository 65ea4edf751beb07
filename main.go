// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"chocobliss/config"
	"chocobliss/controllers"
	"chocobliss/middleware"
	"chocobliss/payment"
	"chocobliss/routes"
	"chocobliss/services"
	"chocobliss/store"
	"chocobliss/utils"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, client, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Printf("disconnect mongo: %v", err)
			}
		}()
	}
	log.Printf("store backend: %s", set.Backend)

	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		log.Println("Razorpay keys are not set; online payments will fail")
	}
	gateway := payment.NewRazorpay(payment.RazorpayConfig{
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		BaseURL:   cfg.RazorpayBaseURL,
		Timeout:   cfg.ProviderTimeout,
	})

	lifecycle := services.NewOrderLifecycle(set.Orders, set.Catalog, gateway)
	lifecycle.DefaultCurrency = cfg.Currency
	lifecycle.GatewayTimeout = cfg.ProviderTimeout

	feed := controllers.NewOrderFeed()
	lifecycle.Subscribe(feed)

	// Initialize EmailService
	mailer := utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender)
	if mailer != nil {
		lifecycle.Subscribe(mailer)
	} else {
		log.Println("POSTMARK_API_TOKEN is not set; order emails are disabled")
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	handler := routes.NewHandler(routes.Controllers{
		Users:    controllers.NewUserController(set.Users, tokens),
		Products: controllers.NewProductController(set.Catalog),
		Cart:     controllers.NewCartController(set.Catalog),
		Orders:   controllers.NewOrderController(lifecycle),
		Payments: controllers.NewPaymentController(lifecycle),
		Admin:    controllers.NewAdminController(set.Catalog, cfg.ImagesDir),
		Feed:     feed,
	}, middleware.NewAuth(tokens), cfg.ImagesDir)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server is running on port %d (env=%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Println("shutting down")
	}

	feed.Close()
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if mailer != nil {
		mailer.Wait()
	}
	return nil
}

// openStores picks the store set once. In dev an unreachable Mongo falls
// back to the in-memory set.
func openStores(ctx context.Context, cfg config.Config) (store.Set, *mongo.Client, error) {
	if cfg.StoreBackend == config.BackendMemory {
		return store.NewMemorySet(), nil, nil
	}

	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		if cfg.IsDev() {
			log.Printf("WARNING: %v; falling back to in-memory stores", err)
			return store.NewMemorySet(), nil, nil
		}
		return store.Set{}, nil, err
	}

	db := client.Database(cfg.MongoDatabase)
	ictx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureIndexes(ictx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return store.Set{}, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return store.NewMongoSet(db), client, nil
}
