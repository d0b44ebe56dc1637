package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lookboard/internal/flagx"
	"github.com/dmitrijs2005/lookboard/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "1.5s" style
// strings or integer nanoseconds. Keys missing from the file keep the value
// Config already had.
type JsonConfig struct {
	HTTPAddr string `json:"http_addr"`
	GRPCAddr string `json:"grpc_addr"`
	LogLevel string `json:"log_level"`

	Capacity int    `json:"capacity"`
	TieBreak string `json:"tie_break"`

	SheetBackend   string `json:"sheet_backend"`
	SheetName      string `json:"sheet_name"`
	DatabaseDSN    string `json:"database_dsn"`
	SQLitePath     string `json:"sqlite_path"`
	RedisAddr      string `json:"redis_addr"`
	RedisPassword  string `json:"redis_password"`
	RedisDB        int    `json:"redis_db"`
	RedisKeyPrefix string `json:"redis_key_prefix"`

	BlobBackend     string `json:"blob_backend"`
	BlobNamespace   string `json:"blob_namespace"`
	BlobMaxBytes    int    `json:"blob_max_bytes"`
	S3RootUser      string `json:"s3_root_user"`
	S3RootPassword  string `json:"s3_root_password"`
	S3Bucket        string `json:"s3_bucket"`
	S3Region        string `json:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint"`
	PublicBaseURL   string `json:"public_base_url"`
	PublicRead      bool   `json:"public_read"`
	ThumbnailPrefix string `json:"thumbnail_prefix"`

	RemoteTimeout   timex.Duration `json:"remote_timeout"`
	HealthInterval  timex.Duration `json:"health_interval"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays the file named by flagx.ConfigPath onto config. No
// path means nothing to load.
func parseJson(config *Config) error {
	path := flagx.ConfigPath()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	fromJson(c, config)
	return nil
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:        c.HTTPAddr,
		GRPCAddr:        c.GRPCAddr,
		LogLevel:        c.LogLevel,
		Capacity:        c.Capacity,
		TieBreak:        c.TieBreak,
		SheetBackend:    c.SheetBackend,
		SheetName:       c.SheetName,
		DatabaseDSN:     c.DatabaseDSN,
		SQLitePath:      c.SQLitePath,
		RedisAddr:       c.RedisAddr,
		RedisPassword:   c.RedisPassword,
		RedisDB:         c.RedisDB,
		RedisKeyPrefix:  c.RedisKeyPrefix,
		BlobBackend:     c.BlobBackend,
		BlobNamespace:   c.BlobNamespace,
		BlobMaxBytes:    c.BlobMaxBytes,
		S3RootUser:      c.S3RootUser,
		S3RootPassword:  c.S3RootPassword,
		S3Bucket:        c.S3Bucket,
		S3Region:        c.S3Region,
		S3BaseEndpoint:  c.S3BaseEndpoint,
		PublicBaseURL:   c.PublicBaseURL,
		PublicRead:      c.PublicRead,
		ThumbnailPrefix: c.ThumbnailPrefix,
		RemoteTimeout:   timex.Duration{Duration: c.RemoteTimeout},
		HealthInterval:  timex.Duration{Duration: c.HealthInterval},
		ShutdownTimeout: timex.Duration{Duration: c.ShutdownTimeout},
	}
}

func fromJson(j *JsonConfig, c *Config) {
	c.HTTPAddr = j.HTTPAddr
	c.GRPCAddr = j.GRPCAddr
	c.LogLevel = j.LogLevel
	c.Capacity = j.Capacity
	c.TieBreak = j.TieBreak
	c.SheetBackend = j.SheetBackend
	c.SheetName = j.SheetName
	c.DatabaseDSN = j.DatabaseDSN
	c.SQLitePath = j.SQLitePath
	c.RedisAddr = j.RedisAddr
	c.RedisPassword = j.RedisPassword
	c.RedisDB = j.RedisDB
	c.RedisKeyPrefix = j.RedisKeyPrefix
	c.BlobBackend = j.BlobBackend
	c.BlobNamespace = j.BlobNamespace
	c.BlobMaxBytes = j.BlobMaxBytes
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.PublicBaseURL = j.PublicBaseURL
	c.PublicRead = j.PublicRead
	c.ThumbnailPrefix = j.ThumbnailPrefix
	c.RemoteTimeout = j.RemoteTimeout.Duration
	c.HealthInterval = j.HealthInterval.Duration
	c.ShutdownTimeout = j.ShutdownTimeout.Duration
}
