package service

import (
	"fmt"
	"sync"

	"github.com/MKhiriev/go-dam-sync/internal/adapter"
	"github.com/MKhiriev/go-dam-sync/internal/config"
	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/MKhiriev/go-dam-sync/models"
)

// ClientFactory hands out one DAM client per tenant credential set. Clients
// are cached so retry state and the circuit breaker survive across sync
// passes; rotating a tenant's API key or base address yields a fresh client.
type ClientFactory struct {
	cfg    config.DAM
	logger *logger.Logger

	mu      sync.Mutex
	clients map[string]adapter.DamAPI
}

func NewClientFactory(cfg config.DAM, log *logger.Logger) *ClientFactory {
	if log == nil {
		log = logger.Nop()
	}
	return &ClientFactory{
		cfg:     cfg,
		logger:  log,
		clients: make(map[string]adapter.DamAPI),
	}
}

func (f *ClientFactory) ClientFor(tenant models.Tenant) (adapter.DamAPI, error) {
	key := tenant.TenantID + "|" + tenant.BaseURL + "|" + tenant.APIKey

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[key]; ok {
		return client, nil
	}

	client, err := adapter.NewHTTPDamClient(adapter.DamClientConfig{
		BaseURL:    tenant.BaseURL,
		APIKey:     tenant.APIKey,
		Domain:     tenant.Domain,
		Timeout:    f.cfg.RequestTimeout,
		MaxRetries: f.cfg.MaxRetries,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("building store client for tenant %s: %w", tenant.TenantID, err)
	}

	f.clients[key] = client
	return client, nil
}
