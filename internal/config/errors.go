package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidDAMConfigs indicates invalid asset-store client settings
	// (for example, missing request timeout or zero page size).
	ErrInvalidDAMConfigs = errors.New("invalid asset-store client configuration")
	// ErrInvalidSchedulerConfigs indicates invalid scheduler settings
	// (for example, zero sync interval or zero job concurrency).
	ErrInvalidSchedulerConfigs = errors.New("invalid scheduler configuration")
	// ErrInvalidTransferConfigs indicates invalid transfer settings
	// (for example, zero transfer concurrency or zero retry attempts).
	ErrInvalidTransferConfigs = errors.New("invalid transfer configuration")
)
