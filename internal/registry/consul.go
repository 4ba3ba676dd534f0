package registry

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/config"
)

// Registry registers the service with consul at bootstrap and removes it at
// shutdown. When no consul address is configured the registry is inert and
// Deregister is a no-op.
type Registry struct {
	client    *api.Client
	serviceID string
	logger    *zerolog.Logger
}

func New(cfg config.ConsulConfig, serviceName string, logger *zerolog.Logger) (*Registry, error) {
	if cfg.Addr == "" {
		return &Registry{logger: logger}, nil
	}

	client, err := api.NewClient(&api.Config{Address: cfg.Addr})
	if err != nil {
		return nil, err
	}

	serviceID := fmt.Sprintf("%s-%s", serviceName, uuid.NewString())

	registration := &api.AgentServiceRegistration{
		ID:      serviceID,
		Name:    serviceName,
		Address: cfg.ServiceAddr,
		Port:    cfg.ServicePort,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/healthz", cfg.ServiceAddr, cfg.ServicePort),
			Interval:                       cfg.HealthInterval,
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: cfg.DeregisterAfter,
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, err
	}

	logger.Info().Str("service_id", serviceID).Msg("registered with consul")

	return &Registry{
		client:    client,
		serviceID: serviceID,
		logger:    logger,
	}, nil
}

func (r *Registry) Deregister() {
	if r.client == nil {
		return
	}

	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		r.logger.Error().Err(err).Msg("failed to deregister from consul")
		return
	}

	r.logger.Info().Str("service_id", r.serviceID).Msg("deregistered from consul")
}
