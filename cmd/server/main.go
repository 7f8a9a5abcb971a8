package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prospector/config"
	"prospector/docs"
	"prospector/internal/handlers"
	"prospector/internal/repositories"
	"prospector/internal/services"
	"prospector/internal/utils"
	"prospector/internal/wsnotify"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Prospector API
// @version 1.0
// @description Prospect search, contact storage and WhatsApp campaign delivery.
// @host localhost:8081
// @BasePath /api/v1
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	messenger, cleanup, err := newMessenger(cfg)
	if err != nil {
		log.Fatalf("Error starting messenger: %v", err)
	}
	defer cleanup()

	var store services.ObjectStore
	if cfg.S3Config.Enabled() {
		s3Service, err := services.NewS3Service(cfg.S3Config)
		if err != nil {
			utils.LogError("Error creating S3 service: %v", err)
		} else {
			store = s3Service
		}
	} else {
		utils.LogWarning("S3 not configured; dataset archive and report export are disabled")
	}

	contacts := repositories.NewSQLContactRepository(db)
	templates := repositories.NewSQLTemplateRepository(db)
	campaigns := repositories.NewSQLCampaignRepository(db)
	runner := services.NewCampaignRunner(campaigns, templates, contacts, messenger, wsnotify.Manager, cfg.Campaign.SendDelay)

	runCtx, stopRuns := context.WithCancel(context.Background())
	defer stopRuns()

	httpHandler := handlers.NewHTTPHandler(handlers.Dependencies{
		Contacts:    contacts,
		Templates:   templates,
		Campaigns:   campaigns,
		Runner:      runner,
		Searcher:    services.NewApifyService(cfg.Apify),
		Linker:      messenger,
		Store:       store,
		BaseContext: runCtx,
	})

	mainRouter := mux.NewRouter()
	router := httpHandler.Register(mainRouter)

	docs.SwaggerInfo.Host = "localhost" + cfg.Addr
	router.PathPrefix("/swagger-ui/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/api/v1/swagger-ui/doc.json"),
		httpSwagger.DeepLinking(true),
	))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: c.Handler(mainRouter),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("Server is running on %s\n", cfg.Addr)
		fmt.Printf("Swagger UI available at: http://localhost%s/api/v1/swagger-ui/\n", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-stop
	fmt.Println("\nShutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	// In-flight campaigns stop between contacts and are marked ERROR.
	stopRuns()
	runner.Wait()

	fmt.Println("Server stopped successfully")
}

func newMessenger(cfg *config.Config) (services.LinkedMessenger, func(), error) {
	switch cfg.Campaign.Messenger {
	case "whatsmeow":
		m := services.NewWhatsmeowMessenger(cfg.Whatsmeow)
		if err := m.Connect(); err != nil {
			return nil, nil, err
		}
		return m, m.Disconnect, nil
	default:
		return services.NewEvolutionMessenger(cfg.Evolution, cfg.Campaign.TypingDelay), func() {}, nil
	}
}
