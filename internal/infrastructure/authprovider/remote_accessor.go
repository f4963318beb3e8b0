package authprovider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jhoicas/Agenda-api/internal/application/session"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/pkg/config"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

var _ session.Accessor = (*RemoteAccessor)(nil)

// remoteUser es la respuesta de GET /auth/v1/user.
type remoteUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// RemoteAccessor pregunta al proveedor por el usuario del token en cada petición.
type RemoteAccessor struct {
	client *resty.Client
	log    *logger.Logger
}

// NewRemoteAccessor crea el cliente HTTP del proveedor.
func NewRemoteAccessor(cfg config.AuthConfig, log *logger.Logger) *RemoteAccessor {
	if log == nil {
		log = logger.Nop()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.AnonKey != "" {
		client.SetHeader("apikey", cfg.AnonKey)
	}
	return &RemoteAccessor{client: client, log: log.Named("remote_accessor")}
}

// CurrentUser devuelve (nil, nil) si el proveedor rechaza el token (401/403) y error
// si el proveedor no responde o responde algo inesperado.
func (a *RemoteAccessor) CurrentUser(ctx context.Context, accessToken string) (*entity.User, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, nil
	}
	var out remoteUser
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&out).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("auth provider: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, nil
	default:
		a.log.Warn().Int("status", resp.StatusCode()).Msg("respuesta inesperada del proveedor de auth")
		return nil, fmt.Errorf("auth provider: status %d", resp.StatusCode())
	}
	if out.ID == "" {
		return nil, nil
	}
	return &entity.User{ID: out.ID, Email: out.Email, Phone: out.Phone, Metadata: out.UserMetadata}, nil
}
