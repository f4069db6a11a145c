package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken    string        `mapstructure:"telegram_token"`
	BotHandleTimeout time.Duration `mapstructure:"bot_handle_timeout"`

	// AdminIDs is a comma-separated list of Telegram user IDs allowed
	// to use the admin console.
	AdminIDs     string `mapstructure:"admin_ids"`
	ChannelID    string `mapstructure:"channel_id"`
	ChannelLink  string `mapstructure:"channel_link"`
	DocumentLink string `mapstructure:"document_link"`

	WebhookBaseURL string `mapstructure:"webhook_base_url"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	ListenAddress  string `mapstructure:"listen_address"`

	DatabaseDSN string `mapstructure:"database_dsn"`

	admins map[int64]struct{}
}

func New() *Config {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		logrus.Fatalf("unmarshalling config: %v", err)
	}

	cfg.admins = make(map[int64]struct{})
	for _, raw := range strings.Split(cfg.AdminIDs, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logrus.Fatalf("parsing admin id %q: %v", raw, err)
		}
		cfg.admins[id] = struct{}{}
	}

	return cfg
}

func (c *Config) IsAdmin(id int64) bool {
	_, ok := c.admins[id]
	return ok
}

func SetupCommon() {
	viper.SetDefault("bot_handle_timeout", "10s")
	viper.SetDefault("listen_address", ":8080")
	viper.SetDefault("database_dsn", "kalitka.db")
	viper.SetDefault("admin_ids", "")
	viper.SetDefault("webhook_secret", "")
	viper.SetEnvPrefix("KALITKA")

	viper.MustBindEnv("telegram_token")
	viper.MustBindEnv("channel_id")
	viper.MustBindEnv("channel_link")
	viper.MustBindEnv("document_link")
	viper.MustBindEnv("webhook_base_url")
	viper.AutomaticEnv()
}
