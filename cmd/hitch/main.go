package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"

	"github.com/creda-technologies/hitch/adapters/events"
	"github.com/creda-technologies/hitch/adapters/horizon"
	"github.com/creda-technologies/hitch/adapters/stellartoml"
	"github.com/creda-technologies/hitch/adapters/tokenizer"
	"github.com/creda-technologies/hitch/config"
	"github.com/creda-technologies/hitch/ports"
	"github.com/creda-technologies/hitch/service"
	transport "github.com/creda-technologies/hitch/transport/http"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		log.Fatalf("Invalid log level %q: %v", cfg.Logging.Level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	serverKP, err := keypair.ParseFull(cfg.Auth.SigningSeed)
	if err != nil {
		log.Fatalf("Failed to parse signing seed: %v", err)
	}

	eventPub := ports.EventPublisher(events.NewNopPublisher())
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redis.NewClient(opts),
			},
			watermill.NewSlogLogger(logger),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
		eventPub = events.NewWatermillPublisher(publisher)
	}

	horizonClient := &horizonclient.Client{
		HorizonURL: cfg.Horizon.URL,
		HTTP:       http.DefaultClient,
	}

	authService := service.NewAuthService(
		service.Config{
			ServerKeypair:             serverKP,
			HomeDomain:                cfg.Auth.HomeDomain,
			WebAuthDomain:             cfg.Auth.WebAuthDomain,
			HostURL:                   cfg.Auth.HostURL,
			NetworkPassphrase:         cfg.Auth.NetworkPassphrase,
			AllowedClientDomains:      cfg.Auth.AllowedClientDomains,
			ClientAttributionRequired: cfg.Auth.ClientAttributionRequired,
		},
		horizon.NewPolicySource(horizonClient),
		stellartoml.NewResolver(),
		tokenizer.NewJWTTokenizer([]byte(cfg.Auth.JWTSecret), cfg.Auth.HostURL),
		eventPub,
		logger,
	)

	wellKnown, err := transport.NewWellKnownHandler(transport.TomlDocument{
		Version:           "2.0.0",
		NetworkPassphrase: cfg.Auth.NetworkPassphrase,
		WebAuthEndpoint:   cfg.Auth.HostURL + "/auth",
		SigningKey:        serverKP.Address(),
	})
	if err != nil {
		log.Fatalf("Failed to render metadata document: %v", err)
	}

	router := transport.SetupRouter(authService, wellKnown)

	logger.Info("starting server", "addr", cfg.Server.Addr, "home_domain", cfg.Auth.HomeDomain)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
