package firebase

import (
	"context"
	"sync"
	"time"

	"github.com/eachchat/firebase-push/pkg/cache"
	"github.com/eachchat/firebase-push/pkg/push"
	"github.com/go-kit/kit/endpoint"
	"golang.org/x/oauth2/google"
)

// tokenMargin is subtracted from the issuer-declared lifetime before
// caching, so a token is never presented at the instant of its expiry.
const tokenMargin = time.Minute

// tokenSource hands out a live bearer token, issuing a fresh one through
// the issuer endpoint on a cache miss. The check-issue-store sequence is
// serialized: concurrent misses coalesce into a single issuance and the
// waiters reuse its result.
type tokenSource struct {
	locker sync.Mutex
	cache  cache.Cache
	key    string
	issue  endpoint.Endpoint
}

func (s *tokenSource) get(ctx context.Context) (string, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	// A broken cache backend degrades to issuing on every send rather
	// than failing the send.
	value, ok, _ := s.cache.Get(ctx, s.key)
	if ok {
		return value, nil
	}

	resp, err := s.issue(ctx, nil)
	if err != nil {
		if push.KindOf(err) != "" {
			return "", err
		}
		return "", push.WrapError(push.KindNetwork, err, "could not reach the token endpoint")
	}
	tok := resp.(*token)

	// An issuance failure above leaves the cache untouched; only a live
	// token is ever stored, and one that would outlive its margin.
	if ttl := time.Duration(tok.ExpiresIn)*time.Second - tokenMargin; ttl > 0 {
		_ = s.cache.Set(ctx, s.key, tok.AccessToken, time.Now().Add(ttl))
	}
	return tok.AccessToken, nil
}

// defaultCredentialsEndpoint issues tokens through the local
// application-default credential chain instead of the JWT-bearer exchange.
func defaultCredentialsEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		creds, err := google.FindDefaultCredentials(ctx, scope)
		if err != nil {
			return nil, push.WrapError(push.KindAuth, err, "failed load application default credentials")
		}
		tok, err := creds.TokenSource.Token()
		if err != nil {
			return nil, push.WrapError(push.KindAuth, err, "failed fetch application default token")
		}
		var expiresIn int64
		if !tok.Expiry.IsZero() {
			expiresIn = int64(time.Until(tok.Expiry).Seconds())
		}
		return &token{AccessToken: tok.AccessToken, ExpiresIn: expiresIn}, nil
	}
}
