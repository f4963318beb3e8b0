package authprovider_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Agenda-api/internal/infrastructure/authprovider"
	"github.com/jhoicas/Agenda-api/pkg/config"
	"github.com/jhoicas/Agenda-api/pkg/jwt"
)

const (
	testSecret = "super-secreto-de-pruebas"
	testKID    = "test-key"
	testIssuer = "https://auth.test/auth/v1"
)

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func jwksJSON(pub *rsa.PublicKey) json.RawMessage {
	set := map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": testKID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	data, _ := json.Marshal(set)
	return data
}

func rs256Token(t *testing.T, key *rsa.PrivateKey, claims jwt.Claims) string {
	t.Helper()
	tok := gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKID
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(sub, role string, exp time.Duration) jwt.Claims {
	now := time.Now()
	return jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    testIssuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(exp)),
		},
		Email: "ana@salon.test",
		Role:  role,
	}
}

func TestJWTAccessor_HS256(t *testing.T) {
	a, err := authprovider.NewJWTAccessor(config.AuthConfig{JWTSecret: testSecret}, nil)
	require.NoError(t, err)

	token, err := jwt.Generate(testSecret, "user-1", "ana@salon.test", "", 15)
	require.NoError(t, err)

	u, err := a.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "ana@salon.test", u.Email)
}

func TestJWTAccessor_SinSesion(t *testing.T) {
	a, err := authprovider.NewJWTAccessor(config.AuthConfig{JWTSecret: testSecret}, nil)
	require.NoError(t, err)

	expired, _ := jwt.Generate(testSecret, "user-1", "", "", -1)
	otherSecret, _ := jwt.Generate("otro-secreto", "user-1", "", "", 15)

	for name, token := range map[string]string{
		"vacío":         "",
		"basura":        "no.es.jwt",
		"expirado":      expired,
		"otro secreto":  otherSecret,
		"solo espacios": "   ",
	} {
		t.Run(name, func(t *testing.T) {
			u, err := a.CurrentUser(context.Background(), token)
			assert.NoError(t, err)
			assert.Nil(t, u)
		})
	}
}

func TestJWTAccessor_RolNoAutenticado(t *testing.T) {
	a := authprovider.NewJWTAccessorWithKeyfunc(testSecret, nil, "", nil)
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claimsFor("anon-user", "anon", time.Hour))
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	u, err := a.CurrentUser(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestJWTAccessor_JWKS(t *testing.T) {
	key := rsaKey(t)
	kf, err := keyfunc.NewJWKSetJSON(jwksJSON(&key.PublicKey))
	require.NoError(t, err)

	a := authprovider.NewJWTAccessorWithKeyfunc("", kf, testIssuer, nil)

	u, err := a.CurrentUser(context.Background(), rs256Token(t, key, claimsFor("user-rsa", jwt.RoleAuthenticated, time.Hour)))
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "user-rsa", u.ID)

	// firmado con otra clave
	other := rsaKey(t)
	u, err = a.CurrentUser(context.Background(), rs256Token(t, other, claimsFor("user-rsa", jwt.RoleAuthenticated, time.Hour)))
	require.NoError(t, err)
	assert.Nil(t, u)

	// issuer distinto
	c := claimsFor("user-rsa", jwt.RoleAuthenticated, time.Hour)
	c.Issuer = "https://otro.test"
	u, err = a.CurrentUser(context.Background(), rs256Token(t, key, c))
	require.NoError(t, err)
	assert.Nil(t, u)

	// HS256 sin secreto configurado
	hs, _ := jwt.Generate(testSecret, "user-1", "", testIssuer, 15)
	u, err = a.CurrentUser(context.Background(), hs)
	require.NoError(t, err)
	assert.Nil(t, u)
}
