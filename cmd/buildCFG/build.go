package buildCFG

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"

	"eventdesk/internal/mailer"
)

type ServerConfig struct {
	Port string
}

type BackendConfig struct {
	BaseURL string
	Admin   bool
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return ServerConfig{Port: port}
}

func BuildBackendConfig(cfg *config.Config, log *zerolog.Logger) (BackendConfig, error) {
	baseURL := cfg.GetString("backend.base_url")
	if baseURL == "" {
		return BackendConfig{}, fmt.Errorf("backend.base_url is required")
	}
	admin := cfg.GetBool("backend.admin")
	log.Info().Str("base_url", baseURL).Bool("admin", admin).Msg("backend config loaded")
	return BackendConfig{BaseURL: baseURL, Admin: admin}, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	url := cfg.GetString("rabbit.url")
	if url == "" {
		return RabbitConfig{}, fmt.Errorf("rabbit.url is required")
	}
	exchange := cfg.GetString("rabbit.exchange")
	if exchange == "" {
		exchange = "notifications"
	}
	queue := cfg.GetString("rabbit.queue")
	if queue == "" {
		queue = "inbox"
	}
	log.Info().Str("exchange", exchange).Str("queue", queue).Msg("RabbitMQ config loaded")
	return RabbitConfig{Url: url, Exchange: exchange, Queue: queue}, nil
}

// BuildMailConfig reads the optional mail section. The password comes
// from the environment so it never lands in config.yaml.
func BuildMailConfig(cfg *config.Config, log *zerolog.Logger) mailer.Config {
	mc := mailer.Config{
		Host:     cfg.GetString("mail.host"),
		Port:     cfg.GetString("mail.port"),
		From:     cfg.GetString("mail.from"),
		Password: cfg.GetString("MAIL_PASSWORD"),
		To:       cfg.GetString("mail.to"),
	}
	if mc.Port == "" {
		mc.Port = "587"
	}
	if !mc.Enabled() {
		log.Info().Msg("mail forwarding disabled (no mail config)")
	}
	return mc
}
