package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		Version string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	DAM struct {
		RequestTimeout Duration `json:"request_timeout"`
		PageSize       int      `json:"page_size"`
		MaxRetries     int      `json:"max_retries"`
	} `json:"dam,omitempty"`

	Scheduler struct {
		SyncInterval      Duration `json:"sync_interval"`
		JobPollInterval   Duration `json:"job_poll_interval"`
		MaxConcurrentJobs int      `json:"max_concurrent_jobs"`
	} `json:"scheduler,omitempty"`

	Transfer struct {
		MaxConcurrent  int      `json:"max_concurrent"`
		RetryAttempts  int      `json:"retry_attempts"`
		RetryBaseDelay Duration `json:"retry_base_delay"`
	} `json:"transfer,omitempty"`

	Log struct {
		FilePath string `json:"file_path"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Version: jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		DAM: DAM{
			RequestTimeout: time.Duration(jsonCfg.DAM.RequestTimeout),
			PageSize:       jsonCfg.DAM.PageSize,
			MaxRetries:     jsonCfg.DAM.MaxRetries,
		},
		Scheduler: Scheduler{
			SyncInterval:      time.Duration(jsonCfg.Scheduler.SyncInterval),
			JobPollInterval:   time.Duration(jsonCfg.Scheduler.JobPollInterval),
			MaxConcurrentJobs: jsonCfg.Scheduler.MaxConcurrentJobs,
		},
		Transfer: Transfer{
			MaxConcurrent:  jsonCfg.Transfer.MaxConcurrent,
			RetryAttempts:  jsonCfg.Transfer.RetryAttempts,
			RetryBaseDelay: time.Duration(jsonCfg.Transfer.RetryBaseDelay),
		},
		Log: Log{
			FilePath: jsonCfg.Log.FilePath,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
