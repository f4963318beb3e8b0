// Package authprovider adapta el proveedor externo de autenticación al puerto session.Accessor.
package authprovider

import (
	"context"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/jhoicas/Agenda-api/internal/application/session"
	"github.com/jhoicas/Agenda-api/internal/domain/entity"
	"github.com/jhoicas/Agenda-api/pkg/config"
	"github.com/jhoicas/Agenda-api/pkg/jwt"
	"github.com/jhoicas/Agenda-api/pkg/logger"
)

var _ session.Accessor = (*JWTAccessor)(nil)

// JWTAccessor valida el access token localmente: HS256 con el secreto del proveedor
// y/o firmas asimétricas contra su JWKS.
type JWTAccessor struct {
	secret []byte
	jwks   keyfunc.Keyfunc
	opts   []gojwt.ParserOption
	log    *logger.Logger
}

// NewJWTAccessor construye el accessor a partir de la configuración. Si hay JWKS_URL
// descarga el JWKS en segundo plano (keyfunc lo refresca).
func NewJWTAccessor(cfg config.AuthConfig, log *logger.Logger) (*JWTAccessor, error) {
	var kf keyfunc.Keyfunc
	if cfg.JWKSURL != "" {
		k, err := keyfunc.NewDefault([]string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("jwks %s: %w", cfg.JWKSURL, err)
		}
		kf = k
	}
	return NewJWTAccessorWithKeyfunc(cfg.JWTSecret, kf, cfg.Issuer, log), nil
}

// NewJWTAccessorWithKeyfunc permite inyectar un JWKS ya cargado (tests).
func NewJWTAccessorWithKeyfunc(secret string, kf keyfunc.Keyfunc, issuer string, log *logger.Logger) *JWTAccessor {
	if log == nil {
		log = logger.Nop()
	}
	opts := []gojwt.ParserOption{gojwt.WithExpirationRequired()}
	if issuer != "" {
		opts = append(opts, gojwt.WithIssuer(issuer))
	}
	a := &JWTAccessor{jwks: kf, opts: opts, log: log.Named("jwt_accessor")}
	if secret != "" {
		a.secret = []byte(secret)
	}
	return a
}

// CurrentUser devuelve el usuario del token o (nil, nil) si el token no es una sesión válida.
func (a *JWTAccessor) CurrentUser(_ context.Context, accessToken string) (*entity.User, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, nil
	}
	claims, err := jwt.ParseWithKeyfunc(accessToken, a.keyFor, a.opts...)
	if err != nil {
		a.log.Debug().Err(err).Msg("token rechazado")
		return nil, nil
	}
	// tokens anon / service_role no representan a un usuario
	if claims.Role != "" && claims.Role != jwt.RoleAuthenticated {
		return nil, nil
	}
	return &entity.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		Phone:    claims.Phone,
		Metadata: claims.UserMetadata,
	}, nil
}

func (a *JWTAccessor) keyFor(t *gojwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*gojwt.SigningMethodHMAC); ok {
		if a.secret == nil {
			return nil, fmt.Errorf("HS256 no configurado")
		}
		return a.secret, nil
	}
	if a.jwks == nil {
		return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
	}
	return a.jwks.Keyfunc(t)
}
