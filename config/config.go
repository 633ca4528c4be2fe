package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server  ServerConfig  `yaml:"server"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Notify  NotifyConfig  `yaml:"notify"`
	SongDB  SongDBConfig  `yaml:"songdb"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type MongoConfig struct {
	// URI may also be supplied through the MONGO_URI environment
	// variable, which takes precedence over the file.
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	OutputDir string `yaml:"output_dir"`

	// GCS options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type CacheConfig struct {
	Size       int `yaml:"size"`
	TTLMinutes int `yaml:"ttl_minutes"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

type NotifyConfig struct {
	// Scope selects who task notifications go to: "assignees" or "group"
	Scope string `yaml:"scope"`

	// DueSoonHours is the look-ahead window for due-task reminders
	DueSoonHours int `yaml:"due_soon_hours"`
}

func (c NotifyConfig) DueSoonWindow() time.Duration {
	return time.Duration(c.DueSoonHours) * time.Hour
}

type SongDBConfig struct {
	APIURL string `yaml:"api_url"`
	WebURL string `yaml:"web_url"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	if uri := os.Getenv("MONGO_URI"); uri != "" {
		config.Mongo.URI = uri
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Mongo.Database == "" {
		config.Mongo.Database = "bandstand"
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}

	if config.Storage.OutputDir == "" {
		config.Storage.OutputDir = "output"
	}

	if config.Cache.Size == 0 {
		config.Cache.Size = 256
	}

	if config.Cache.TTLMinutes == 0 {
		config.Cache.TTLMinutes = 5
	}

	if config.Notify.Scope == "" {
		config.Notify.Scope = "assignees"
	}

	if config.Notify.DueSoonHours == 0 {
		config.Notify.DueSoonHours = 48
	}

	return config, nil
}
