package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/go-resty/resty/v2"
)

// BodyHMACHeader must match the header the server checks.
const BodyHMACHeader = "X-Body-HMAC"

type httpRopClient struct {
	client *utils.HTTPClient

	signer *utils.Signer

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRopClient returns a [RopClient] for the server at cfg.BaseURL.
// With cfg.HashKey set every ROP body is signed.
func NewHTTPRopClient(cfg config.Adapter, logger *logger.Logger) (RopClient, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter base url: %w", err)
	}

	client := utils.NewHTTPClient(baseURL, cfg.RequestTimeout)

	rc := &httpRopClient{client: client, logger: logger}
	if cfg.HashKey != "" {
		rc.signer = utils.NewSigner(cfg.HashKey)
	}
	return rc, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpRopClient) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRopClient) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpRopClient) Register(ctx context.Context, user models.User) (models.Token, error) {
	return h.authenticate(ctx, "/api/user/register", user)
}

func (h *httpRopClient) Login(ctx context.Context, user models.User) (models.Token, error) {
	return h.authenticate(ctx, "/api/user/login", user)
}

// authenticate posts the credentials and keeps the bearer token from the
// Authorization response header.
func (h *httpRopClient) authenticate(ctx context.Context, path string, user models.User) (models.Token, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post(path)
	if err != nil {
		return models.Token{}, fmt.Errorf("%s request: %w", path, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Token{}, err
	}

	signed, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Token{}, fmt.Errorf("%s parse bearer token: %w", path, err)
	}
	userID, err := utils.ParseUserIDFromJWT(signed)
	if err != nil {
		return models.Token{}, fmt.Errorf("%s parse user id: %w", path, err)
	}

	h.SetToken(signed)
	return models.Token{SignedString: signed, UserID: userID, Login: user.Login}, nil
}

func (h *httpRopClient) ServerInfo(ctx context.Context) (models.ServerInfo, error) {
	var info models.ServerInfo
	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&info).
		Get("/api/info")
	if err != nil {
		return models.ServerInfo{}, fmt.Errorf("server info request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ServerInfo{}, err
	}
	return info, nil
}

func (h *httpRopClient) OpenSession(ctx context.Context) (string, error) {
	var session models.SessionResponse
	resp, err := h.authedRequest(ctx).
		SetResult(&session).
		Post("/api/rop/session")
	if err != nil {
		return "", fmt.Errorf("open session request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}
	return session.SessionID, nil
}

func (h *httpRopClient) CloseSession(ctx context.Context, sid string) error {
	resp, err := h.authedRequest(ctx).
		SetPathParam("session", sid).
		Delete("/api/rop/session/{session}")
	if err != nil {
		return fmt.Errorf("close session request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *httpRopClient) Call(ctx context.Context, sid, rop string, req models.RopRequest) (models.RopResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.RopResponse{}, fmt.Errorf("encode %s request: %w", rop, err)
	}

	r := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParams(map[string]string{"session": sid, "rop": rop}).
		SetBody(body)
	if h.signer != nil {
		r.SetHeader(BodyHMACHeader, h.signer.SignHex(body))
	}

	resp, err := r.Post("/api/rop/{session}/{rop}")
	if err != nil {
		return models.RopResponse{}, fmt.Errorf("%s request: %w", rop, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RopResponse{}, err
	}

	var out models.RopResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.RopResponse{}, fmt.Errorf("decode %s response: %w", rop, err)
	}

	if code := mapi.ErrorCode(out.Result); code.Failed() {
		h.logger.Debug().Str("rop", rop).Str("result", code.Error()).Msg("rop failed")
		return out, code
	}
	return out, nil
}

func (h *httpRopClient) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
