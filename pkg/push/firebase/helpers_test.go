package firebase

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eachchat/firebase-push/pkg/config"
)

// testKeyPEM generates a throwaway service-account key.
func testKeyPEM(t *testing.T) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, pem.Encode(&buf, &pem.Block{Type: "PRIVATE KEY", Bytes: der}))
	return buf.String()
}

// testTokenServer fakes the OAuth2 token endpoint, counting issuance calls.
func testTokenServer(t *testing.T, hits *int32, expiresIn int64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.PostForm.Get("grant_type"))
		assert.NotEmpty(t, r.PostForm.Get("assertion"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-abc","expires_in":%d}`, expiresIn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, tokenURI, host string) *Config {
	t.Helper()

	return &Config{
		ClientEmail: "sender@demo-project.iam.gserviceaccount.com",
		PrivateKey:  testKeyPEM(t),
		ProjectID:   "demo-project",
		TokenURI:    tokenURI,
		Host:        host,
		Timeout:     config.Duration(5 * time.Second),
	}
}

// recordingCache captures Set calls so expiry math can be asserted.
type recordingCache struct {
	values    map[string]string
	expiresAt map[string]time.Time
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		values:    make(map[string]string),
		expiresAt: make(map[string]time.Time),
	}
}

func (c *recordingCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *recordingCache) Set(_ context.Context, key, value string, expiresAt time.Time) error {
	c.values[key] = value
	c.expiresAt[key] = expiresAt
	return nil
}
