// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies all
// daemon invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive sentinel error
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.DAM.RequestTimeout <= 0 || cfg.DAM.PageSize <= 0 || cfg.DAM.MaxRetries <= 0 {
		return ErrInvalidDAMConfigs
	}

	if cfg.Scheduler.SyncInterval <= 0 || cfg.Scheduler.JobPollInterval <= 0 || cfg.Scheduler.MaxConcurrentJobs <= 0 {
		return ErrInvalidSchedulerConfigs
	}

	if cfg.Transfer.MaxConcurrent <= 0 || cfg.Transfer.RetryAttempts <= 0 || cfg.Transfer.RetryBaseDelay <= 0 {
		return ErrInvalidTransferConfigs
	}

	return nil
}
