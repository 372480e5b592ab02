package firebase

import (
	"fmt"

	"github.com/eachchat/firebase-push/pkg/cache"
	"github.com/eachchat/firebase-push/pkg/push"
)

// FromDSN builds the transport from a connection string of the form
//
//	firebase://sender@project.iam.gserviceaccount.com?project_id=my-project&private_key=-----BEGIN+PRIVATE+KEY-----...
//
// The DSN user and host form the service-account client email. The private
// key is taken from the raw string so URL decoding cannot mangle it.
func FromDSN(dsn *push.DSN, store cache.Cache) (*Firebase, error) {
	if dsn.Scheme != Scheme {
		return nil, push.NewError(push.KindConfiguration, "unsupported scheme %q, expected %q", dsn.Scheme, Scheme)
	}

	cfg := &Config{
		ClientEmail: fmt.Sprintf("%s@%s", dsn.User, dsn.Host),
		ProjectID:   dsn.Option("project_id"),
		PrivateKey:  dsn.RawOption("private_key"),
		TokenURI:    dsn.Option("token_uri"),
		Host:        dsn.Option("host"),
	}
	if dsn.Option("use_default_credentials") == "true" {
		cfg.UseDefaultCredentials = true
	}
	return New(cfg, store)
}
