package firebase

import (
	"strings"
	"time"

	"github.com/eachchat/firebase-push/pkg/config"
	"github.com/eachchat/firebase-push/pkg/push"
)

const (
	// defaultHost is the default host of the FCM v1 send endpoint.
	defaultHost = "fcm.googleapis.com"
	// defaultTokenURI is the google OAuth2 token endpoint.
	defaultTokenURI = "https://oauth2.googleapis.com/token"
	// scope grants access to the messaging capability only.
	scope = "https://www.googleapis.com/auth/firebase.messaging"
)

type Config struct {
	// ClientEmail is the service-account identity, e.g.
	// sender@project.iam.gserviceaccount.com.
	ClientEmail string `yaml:"client_email"`

	// PrivateKey is the service-account PEM key. Keys arriving through a
	// DSN or environment carry literal `\n` or `_` in place of newlines
	// and spaces in place of `+`; Validate restores them.
	PrivateKey string `yaml:"private_key"`

	ProjectID string `yaml:"project_id"`

	// TokenURI overrides the OAuth2 token endpoint.
	TokenURI string `yaml:"token_uri"`

	// Host overrides the messaging endpoint host. A bare host is reached
	// over https.
	Host string `yaml:"host"`

	// Timeout bounds each HTTP call, token issuance included.
	// Default: 30s
	Timeout config.Duration `yaml:"timeout"`

	// UseDefaultCredentials delegates token issuance to the local
	// application-default credentials instead of the JWT-bearer exchange.
	// ClientEmail and PrivateKey are not required in this mode.
	UseDefaultCredentials bool `yaml:"use_default_credentials"`
}

func (c *Config) Validate() error {
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.TokenURI == "" {
		c.TokenURI = defaultTokenURI
	}
	if c.Timeout == 0 {
		c.Timeout = config.Duration(30 * time.Second)
	}
	if c.ProjectID == "" {
		return push.NewError(push.KindConfiguration, "project_id is required")
	}
	if c.UseDefaultCredentials {
		return nil
	}
	if c.ClientEmail == "" {
		return push.NewError(push.KindConfiguration, "client_email is required")
	}
	if c.PrivateKey == "" {
		return push.NewError(push.KindConfiguration, "private_key is required")
	}
	c.PrivateKey = normalizePrivateKey(c.PrivateKey)
	return nil
}

// normalizePrivateKey restores a PEM key mangled by string-based transport:
// inside the base64 body, literal `\n` and `_` stand for newlines and a
// space stands for `+` (lost to URL decoding). The BEGIN/END armor lines
// are left untouched.
func normalizePrivateKey(key string) string {
	parts := strings.Split(key, "-----")
	if len(parts) < 4 {
		return key
	}
	body := parts[2]
	body = strings.ReplaceAll(body, `\n`, "\n")
	body = strings.ReplaceAll(body, "_", "\n")
	body = strings.ReplaceAll(body, " ", "+")
	parts[2] = body
	return strings.Join(parts, "-----")
}
