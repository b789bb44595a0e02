package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	RateBox  RateBoxConfig  `yaml:"ratebox"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	QuoteCreatedTopicName string `yaml:"quote_created_topic_name"`
	QuoteExpiredTopicName string `yaml:"quote_expired_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type RateBoxConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	QuoteTTLSeconds      int `yaml:"quote_ttl_seconds"`
	QuoteCacheTTLSeconds int `yaml:"quote_cache_ttl_seconds"`
	CarrierDirTTLSeconds int `yaml:"carrier_dir_ttl_seconds"`
	RateLimitPerMinute   int `yaml:"rate_limit_per_minute"`

	// Explicit carrier account IDs. When set, the carrier directory is not
	// fetched from the provider at all.
	CarrierIDs []string `yaml:"carrier_ids"`

	RateProviderBaseURL string `yaml:"rate_provider_base_url"`
	RateProviderMode    string `yaml:"rate_provider_mode"` // "shipengine" | "fake"
	RateProviderAPIKey  string `yaml:"rate_provider_api_key"`

	ShipFrom OriginConfig `yaml:"ship_from"`

	WorkerHTTPAddr             string `yaml:"worker_http_addr"`
	WorkerSweepIntervalSeconds int    `yaml:"worker_sweep_interval_seconds"`
	WorkerBatchSize            int    `yaml:"worker_batch_size"`
}

// OriginConfig is the warehouse address every quote ships from.
type OriginConfig struct {
	Name       string `yaml:"name"`
	Street1    string `yaml:"street1"`
	Street2    string `yaml:"street2"`
	City       string `yaml:"city"`
	State      string `yaml:"state"`
	PostalCode string `yaml:"postal_code"`
	Country    string `yaml:"country"`
	Phone      string `yaml:"phone"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
