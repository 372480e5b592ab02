package firebase

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/eachchat/firebase-push/pkg/cache"
	"github.com/eachchat/firebase-push/pkg/push"
	"github.com/golang-jwt/jwt/v5"
)

// Scheme is the transport's registration name.
const Scheme = "firebase"

// Firebase pushes chat notifications through the FCM HTTP v1 endpoint,
// authenticating with a service-account credential and caching the bearer
// token across sends. One send performs exactly one HTTP POST and at most
// one token-issuance round-trip; no retries.
type Firebase struct {
	cfg       *Config
	endpoints *Endpoints
	tokens    *tokenSource
}

// New builds the transport. The cache store amortizes token issuance across
// sends; pass nil for a process-local in-memory store.
func New(cfg *Config, store cache.Cache) (*Firebase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = cache.NewMemory()
	}

	var key *rsa.PrivateKey
	if !cfg.UseDefaultCredentials {
		var err error
		key, err = jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKey))
		if err != nil {
			return nil, push.WrapError(push.KindConfiguration, err, "malformed private key")
		}
	}

	endpoints, err := newEndpoints(cfg, key)
	if err != nil {
		return nil, err
	}

	issue := endpoints.GetTokenEndpoint
	if cfg.UseDefaultCredentials {
		issue = defaultCredentialsEndpoint()
	}

	return &Firebase{
		cfg:       cfg,
		endpoints: endpoints,
		tokens: &tokenSource{
			cache: store,
			key:   fmt.Sprintf("firebase:access_token:%s", cfg.ProjectID),
			issue: issue,
		},
	}, nil
}

func (p *Firebase) PushNotice(ctx context.Context, message *push.Message) (*push.Receipt, error) {
	payload, err := buildPayload(message)
	if err != nil {
		return nil, err
	}

	bearer, err := p.tokens.get(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := p.endpoints.PushNoticeEndpoint(ctx, &sendRequest{payload: payload, token: bearer})
	if err != nil {
		if push.KindOf(err) != "" {
			return nil, err
		}
		return nil, push.WrapError(push.KindNetwork, err, "could not reach the remote firebase server")
	}
	return resp.(*push.Receipt), nil
}

func (p *Firebase) String() string {
	return fmt.Sprintf("firebase://%s/v1/projects/%s/messages:send", p.cfg.Host, p.cfg.ProjectID)
}
