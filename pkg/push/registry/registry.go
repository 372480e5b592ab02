package registry

import (
	"fmt"

	"github.com/eachchat/firebase-push/pkg/cache"
	"github.com/eachchat/firebase-push/pkg/config"
	"github.com/eachchat/firebase-push/pkg/push"
	"github.com/eachchat/firebase-push/pkg/push/firebase"
)

type Config struct {
	Firebase *firebase.Config `yaml:"firebase"`
}

// Validate validates the configured transports.
func (c *Config) Validate() error {
	if c.Firebase == nil {
		return fmt.Errorf("no transport configured")
	}
	err := config.ValidateConfig[config.Config](c)
	if err != nil {
		return fmt.Errorf("failed validate push config: %v", err)
	}
	return nil
}

// Set holds the constructed transports, keyed by scheme name. All
// transports share one cache store.
type Set struct {
	set map[string]push.Push
}

func New(cfg *Config, store cache.Cache) (*Set, error) {
	set := make(map[string]push.Push)
	if cfg.Firebase != nil {
		p, err := firebase.New(cfg.Firebase, store)
		if err != nil {
			return nil, err
		}
		set[firebase.Scheme] = p
	}

	return &Set{
		set: set,
	}, nil
}

func (s *Set) Get(name string) (push.Push, error) {
	p, ok := s.set[name]
	if !ok {
		return nil, fmt.Errorf("push client %s not found", name)
	}
	return p, nil
}

// FromDSN parses a connection string and selects the transport by its
// scheme name.
func FromDSN(raw string, store cache.Cache) (push.Push, error) {
	dsn, err := push.ParseDSN(raw)
	if err != nil {
		return nil, err
	}

	switch dsn.Scheme {
	case firebase.Scheme:
		return firebase.FromDSN(dsn, store)
	default:
		return nil, push.NewError(push.KindConfiguration, "unsupported scheme %q", dsn.Scheme)
	}
}
