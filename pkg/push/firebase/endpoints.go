package firebase

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eachchat/firebase-push/pkg/push"
	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/golang-jwt/jwt/v5"
)

type Endpoints struct {
	GetTokenEndpoint   endpoint.Endpoint
	PushNoticeEndpoint endpoint.Endpoint
}

// sendRequest carries one outbound send through the push endpoint: the
// built message object and the bearer token to present.
type sendRequest struct {
	payload map[string]interface{}
	token   string
}

// token is the issuer's reply to a JWT-bearer exchange.
type token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func newEndpoints(cfg *Config, key *rsa.PrivateKey) (*Endpoints, error) {
	tgt, err := parseHost(cfg.Host)
	if err != nil {
		return nil, push.WrapError(push.KindConfiguration, err, "failed parse host")
	}
	tgt.Path = ""

	client := &http.Client{Timeout: time.Duration(cfg.Timeout)}
	options := []httptransport.ClientOption{httptransport.SetClient(client)}

	endpoints := &Endpoints{
		PushNoticeEndpoint: httptransport.NewClient("POST", tgt, func(ctx context.Context, r *http.Request, request interface{}) error {
			req := request.(*sendRequest)
			r.URL.Path = fmt.Sprintf("/v1/projects/%s/messages:send", cfg.ProjectID)

			var buf bytes.Buffer
			if err := json.NewEncoder(&buf).Encode(map[string]interface{}{"message": req.payload}); err != nil {
				return err
			}

			r.Body = io.NopCloser(&buf)
			r.Header.Set("Content-Type", "application/json")
			r.Header.Set("Authorization", "Bearer "+req.token)
			return nil
		}, decodeSendResponse, options...).Endpoint(),
	}

	// Token issuance only exists in the JWT-bearer mode; with default
	// credentials the token source uses the local credential chain.
	if key != nil {
		tokenTgt, err := url.Parse(cfg.TokenURI)
		if err != nil {
			return nil, push.WrapError(push.KindConfiguration, err, "failed parse token_uri")
		}

		endpoints.GetTokenEndpoint = httptransport.NewClient("POST", tokenTgt, func(ctx context.Context, r *http.Request, request interface{}) error {
			assertion, err := signAssertion(cfg, key)
			if err != nil {
				return push.WrapError(push.KindAuth, err, "failed sign token assertion")
			}

			values := url.Values{}
			values.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
			values.Set("assertion", assertion)
			body := values.Encode()

			r.Body = io.NopCloser(strings.NewReader(body))
			r.ContentLength = int64(len(body))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return nil
		}, decodeTokenResponse, options...).Endpoint()
	}

	return endpoints, nil
}

// parseHost accepts either a bare host, reached over https, or a full URL
// with an explicit scheme.
func parseHost(host string) (*url.URL, error) {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return url.Parse(host)
}

// signAssertion builds the RS256 service-account assertion for the
// messaging scope. The issuer's clock tolerance is small, so the claims use
// the local clock directly; persistent rejections here mean clock skew or a
// revoked key.
func signAssertion(cfg *Config, key *rsa.PrivateKey) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   cfg.ClientEmail,
		"scope": scope,
		"aud":   cfg.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}

func decodeTokenResponse(ctx context.Context, resp *http.Response) (interface{}, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, push.NewError(push.KindAuth, "token endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	tok := new(token)
	if err := json.NewDecoder(resp.Body).Decode(tok); err != nil {
		return nil, push.WrapError(push.KindAuth, err, "failed decode token response")
	}
	if tok.AccessToken == "" {
		return nil, push.NewError(push.KindAuth, "token response is missing access_token")
	}
	return tok, nil
}

// providerResponse is the per-result reply shape of the messaging endpoint.
type providerResponse struct {
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// decodeSendResponse classifies the two rejection shapes the provider uses:
// a per-result error inside a JSON body regardless of status code, and a
// bare non-200 body. Anything else is a success carrying the provider
// message id, which may be absent.
func decodeSendResponse(ctx context.Context, resp *http.Response) (interface{}, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, push.WrapError(push.KindNetwork, err, "failed read push response")
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var pr providerResponse
		if err := json.Unmarshal(body, &pr); err == nil && len(pr.Results) > 0 {
			if pr.Results[0].Error != "" {
				return nil, push.NewError(push.KindProvider, "%s", pr.Results[0].Error)
			}
			if resp.StatusCode == http.StatusOK {
				return &push.Receipt{MessageID: pr.Results[0].MessageID}, nil
			}
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, push.NewError(push.KindProvider, "%s", strings.TrimSpace(string(body)))
	}
	return &push.Receipt{}, nil
}
