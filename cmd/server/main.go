package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"google.golang.org/genai"

	"github.com/finchat/backend/internal/advisor"
	"github.com/finchat/backend/internal/categorize"
	"github.com/finchat/backend/internal/config"
	"github.com/finchat/backend/internal/ledger"
	"github.com/finchat/backend/internal/logger"
	"github.com/finchat/backend/internal/service"
	"github.com/finchat/backend/internal/session"
)

func main() {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load(os.Getenv)
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	var genaiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		var err error
		genaiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create genai client")
		}
		log.Info().Str("model", cfg.GeminiModel).Msg("Gemini enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; classification falls back to rules, advisor disabled")
	}

	var primary categorize.Categorizer
	if genaiClient != nil {
		primary = categorize.NewGemini(genaiClient, cfg.GeminiModel)
	}
	categorizer := categorize.NewTotal(primary, categorize.NewRules(), log)

	sessions := session.NewManager(func(id string) *session.Session {
		s := &session.Session{Ledger: ledger.New(categorizer)}
		if genaiClient != nil {
			s.Advisor = advisor.NewSession(genaiClient, cfg.GeminiModel)
		}
		return s
	})

	handler := service.NewHandler(sessions, log, cfg.MaxUploadBytes)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: c.Handler(handler.Router()),
	}

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
