package notify

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/eachchat/firebase-push/pkg/push"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
)

const defaultMaxRequestBody = 1024 * 1024

type Config struct {
	Presentation PresentationConfig `yaml:"presentation"`

	// DefaultTransport is the scheme used when the request names none.
	// Default: firebase
	DefaultTransport string `yaml:"default_transport"`

	// MaxRequestBody bounds the accepted request size in bytes.
	MaxRequestBody int64 `yaml:"max_request_body"`
}

func (c *Config) Validate() error {
	if c.DefaultTransport == "" {
		c.DefaultTransport = "firebase"
	}
	if c.MaxRequestBody == 0 {
		c.MaxRequestBody = defaultMaxRequestBody
	}
	err := c.Presentation.Validate()
	if err != nil {
		return fmt.Errorf("invalid presentation config: %v", err)
	}
	return nil
}

// Registry resolves a push client by scheme name.
type Registry interface {
	Get(name string) (push.Push, error)
}

// Pusher is the HTTP ingest handler: it accepts a chat notification,
// renders its presentation, and dispatches it through the selected
// transport, mapping the transport's error kinds onto HTTP statuses.
type Pusher struct {
	cfg    *Config
	logger log.Logger
	set    Registry
}

func New(cfg *Config, set Registry, logger log.Logger) *Pusher {
	return &Pusher{
		cfg:    cfg,
		logger: logger,
		set:    set,
	}
}

func (p *Pusher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	logger := log.With(p.logger, "requestID", requestID)

	if r.Method != http.MethodPost {
		errorW(w, http.StatusMethodNotAllowed, "only POST is accepted")
		return
	}

	params := new(Params)
	body := http.MaxBytesReader(w, r.Body, p.cfg.MaxRequestBody)
	if err := json.NewDecoder(body).Decode(params); err != nil {
		level.Error(logger).Log("msg", "fail decode request body", "err", err)
		errorW(w, http.StatusBadRequest, "Fail decode request body")
		return
	}

	n := &params.Notification
	if (n.Token == "") == (n.Topic == "") {
		level.Error(logger).Log("msg", "exactly one of token or topic is required")
		errorW(w, http.StatusBadRequest, "Exactly one of token or topic is required")
		return
	}

	transport := n.Transport
	if transport == "" {
		transport = p.cfg.DefaultTransport
	}
	pusher, err := p.set.Get(transport)
	if err != nil {
		level.Error(logger).Log("msg", "fail get push client", "err", err, "transport", transport)
		errorW(w, http.StatusBadRequest, "Unknown transport")
		return
	}

	message := &push.Message{
		Token:   n.Token,
		Topic:   n.Topic,
		Payload: renderPayload(n, &p.cfg.Presentation, requestID),
		Extra:   n.Extra,
	}

	receipt, err := pusher.PushNotice(r.Context(), message)
	if err != nil {
		level.Error(logger).Log("msg", "fail push message", "err", err, "kind", push.KindOf(err), "transport", transport)
		errorW(w, statusOf(err), err.Error())
		return
	}

	level.Info(logger).Log("msg", "push message", "transport", transport, "messageID", receipt.MessageID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reply{
		MessageID: receipt.MessageID,
		RequestID: requestID,
	})
}

// statusOf maps the transport error taxonomy onto HTTP statuses: bad input
// is the caller's fault, credential problems are ours, and upstream
// failures are a bad gateway the caller may retry against.
func statusOf(err error) int {
	switch push.KindOf(err) {
	case push.KindInvalidArgument:
		return http.StatusBadRequest
	case push.KindNetwork, push.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorW(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
	})
}
