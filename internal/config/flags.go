package config

import (
	"flag"
	"time"
)

// ParseFlags parses all daemon configuration flags.
//
// Flags:
//
//	-d database DSN (SQLite path or postgres:// URI)
//	-c/-config json file path with configs
//	-log-file log output file path
//	-sync-interval interval between sync passes (e.g., "30s")
//	-job-poll-interval interval between job-definition refreshes (e.g., "5m")
//	-max-concurrent-jobs maximum jobs executing at once
//	-request-timeout asset-store API request timeout (e.g., "30s")
//	-page-size listing page size
//	-max-retries API call attempts before giving up
//	-max-concurrent-transfers maximum file transfers in flight
//	-transfer-retry-attempts transfer attempts before giving up
//	-transfer-retry-delay initial delay between transfer attempts
func ParseFlags() *StructuredConfig {
	var databaseDSN string
	var jsonConfigPath string
	var logFilePath string
	var syncInterval time.Duration
	var jobPollInterval time.Duration
	var maxConcurrentJobs int
	var requestTimeout time.Duration
	var pageSize int
	var maxRetries int
	var maxConcurrentTransfers int
	var transferRetryAttempts int
	var transferRetryDelay time.Duration

	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&logFilePath, "log-file", "", "Log output file path")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Sync pass interval (e.g., 30s)")
	flag.DurationVar(&jobPollInterval, "job-poll-interval", 0, "Job definition poll interval (e.g., 5m)")
	flag.IntVar(&maxConcurrentJobs, "max-concurrent-jobs", 0, "Maximum jobs executing at once")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "API request timeout (e.g., 30s)")
	flag.IntVar(&pageSize, "page-size", 0, "Listing page size")
	flag.IntVar(&maxRetries, "max-retries", 0, "API call attempts")
	flag.IntVar(&maxConcurrentTransfers, "max-concurrent-transfers", 0, "Maximum file transfers in flight")
	flag.IntVar(&transferRetryAttempts, "transfer-retry-attempts", 0, "Transfer attempts")
	flag.DurationVar(&transferRetryDelay, "transfer-retry-delay", 0, "Initial delay between transfer attempts")

	flag.Parse()

	return &StructuredConfig{
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		DAM: DAM{
			RequestTimeout: requestTimeout,
			PageSize:       pageSize,
			MaxRetries:     maxRetries,
		},
		Scheduler: Scheduler{
			SyncInterval:      syncInterval,
			JobPollInterval:   jobPollInterval,
			MaxConcurrentJobs: maxConcurrentJobs,
		},
		Transfer: Transfer{
			MaxConcurrent:  maxConcurrentTransfers,
			RetryAttempts:  transferRetryAttempts,
			RetryBaseDelay: transferRetryDelay,
		},
		Log: Log{
			FilePath: logFilePath,
		},
		JSONFilePath: jsonConfigPath,
	}
}
