package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lookboard/internal/flagx"
)

var knownFlags = []string{
	"-a", "-r", "-l", "-k", "-t", "-s", "-n", "-d", "-q", "-R",
	"-o", "-u", "-p", "-b", "-g", "-e", "-w",
}

// parseFlags overlays command-line flags onto config.
//
//	-a string    HTTP bind address
//	-r string    gRPC health bind address
//	-l string    log level (debug, info, warn, error)
//	-k int       board capacity
//	-t string    tie-break for equal scores (earliest, latest)
//	-s string    sheet backend (memory, postgres, sqlite, redis)
//	-n string    sheet name
//	-d string    PostgreSQL DSN
//	-q string    SQLite database path
//	-R string    Redis address
//	-o string    blob backend (memory, s3)
//	-u string    S3 user
//	-p string    S3 password
//	-b string    S3 bucket
//	-g string    S3 region
//	-e string    S3 endpoint
//	-w duration  timeout for each remote call
//
// Flags handled by other components are filtered out with flagx.FilterArgs.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("lookboard", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "r", config.GRPCAddr, "gRPC health address and port")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.Capacity, "k", config.Capacity, "board capacity")
	fs.StringVar(&config.TieBreak, "t", config.TieBreak, "tie-break for equal scores")
	fs.StringVar(&config.SheetBackend, "s", config.SheetBackend, "sheet backend")
	fs.StringVar(&config.SheetName, "n", config.SheetName, "sheet name")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "q", config.SQLitePath, "sqlite database path")
	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "redis address")
	fs.StringVar(&config.BlobBackend, "o", config.BlobBackend, "blob backend")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 endpoint")
	fs.DurationVar(&config.RemoteTimeout, "w", config.RemoteTimeout, "timeout for each remote call")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
