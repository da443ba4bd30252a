// Package oidc signs staff in through an OpenID Connect provider. The OAuth
// access token is kept as the backend API credential.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/realty-admin/internal/domain/auth"
	"github.com/target/realty-admin/internal/ports"
)

const stateLength = 32

// ProviderConfig configures the OIDC client.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// DiscoveryURL is the issuer or its /.well-known/openid-configuration URL.
	DiscoveryURL string
	// Audience is sent as the "audience" parameter when the backend API
	// expects tokens minted for it.
	Audience   string
	HTTPClient *http.Client
}

// Provider implements ports.AuthProvider.
type Provider struct {
	config   *oauth2.Config
	audience string
	client   *http.Client
	op       *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider fetches the discovery document and builds the OAuth config.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := gooidc.ClientContext(context.Background(), client)
	op, err := gooidc.NewProvider(ctx, issuerOf(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		audience: cfg.Audience,
		client:   client,
		op:       op,
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func issuerOf(discoveryURL string) string {
	s := strings.TrimSuffix(discoveryURL, "/")
	s = strings.TrimSuffix(s, "/.well-known/openid-configuration")
	return s
}

// Begin returns the provider login URL with a fresh state and nonce.
func (p *Provider) Begin(_ context.Context, redirectURL string) (ports.LoginFlow, error) {
	if redirectURL == "" {
		return ports.LoginFlow{}, errors.New("redirect URL is required")
	}
	state, err := randomString(stateLength)
	if err != nil {
		return ports.LoginFlow{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(stateLength)
	if err != nil {
		return ports.LoginFlow{}, fmt.Errorf("generate nonce: %w", err)
	}

	opts := []oauth2.AuthCodeOption{
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	}
	if p.audience != "" {
		opts = append(opts, oauth2.SetAuthURLParam("audience", p.audience))
	}
	return ports.LoginFlow{AuthURL: p.config.AuthCodeURL(state, opts...), State: state, Nonce: nonce}, nil
}

// Exchange redeems the code, verifies the ID token and returns the identity
// together with the access token.
func (p *Provider) Exchange(ctx context.Context, in ports.Callback) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.client)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code: %w", err)
	}

	c, err := p.idTokenClaims(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, err
	}
	if c.Email == "" || c.Subject == "" {
		var ui claims
		info, uiErr := p.op.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("fetch user info: %w", uiErr)
		}
		if err := info.Claims(&ui); err != nil {
			return domainauth.Identity{}, fmt.Errorf("decode user info: %w", err)
		}
		c = c.merge(ui)
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}
	return c.identity(token.AccessToken, expiresAt), nil
}

func (p *Provider) idTokenClaims(ctx context.Context, token *oauth2.Token, nonce string) (claims, error) {
	if !slices.Contains(p.config.Scopes, gooidc.ScopeOpenID) {
		return claims{}, nil
	}
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return claims{}, errors.New("token response has no id_token")
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != nonce {
		return claims{}, errors.New("id_token nonce mismatch")
	}
	var c claims
	if err := idTok.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("decode id_token claims: %w", err)
	}
	return c, nil
}

// claims accepts standard OIDC claim names and the Active Directory style
// names some corporate IdPs emit.
type claims struct {
	Subject    string   `json:"sub"`
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Groups     []string `json:"groups"`
	Roles      []string `json:"roles"`

	SamAccountName string   `json:"samaccountname"`
	Mail           string   `json:"mail"`
	FirstName      string   `json:"firstname"`
	LastName       string   `json:"lastname"`
	MemberOf       []string `json:"memberof"`
}

// merge fills empty fields of c from other.
func (c claims) merge(other claims) claims {
	if c.Subject == "" {
		c.Subject = other.Subject
	}
	if c.Email == "" {
		c.Email = other.Email
	}
	if c.GivenName == "" {
		c.GivenName = other.GivenName
	}
	if c.FamilyName == "" {
		c.FamilyName = other.FamilyName
	}
	if len(c.Groups) == 0 {
		c.Groups = other.Groups
	}
	if len(c.Roles) == 0 {
		c.Roles = other.Roles
	}
	if c.SamAccountName == "" {
		c.SamAccountName = other.SamAccountName
	}
	if c.Mail == "" {
		c.Mail = other.Mail
	}
	if c.FirstName == "" {
		c.FirstName = other.FirstName
	}
	if c.LastName == "" {
		c.LastName = other.LastName
	}
	if len(c.MemberOf) == 0 {
		c.MemberOf = other.MemberOf
	}
	return c
}

func (c claims) identity(accessToken string, expiresAt time.Time) domainauth.Identity {
	groups := slices.Concat(c.Groups, c.Roles, c.MemberOf)
	return domainauth.Identity{
		UserID:      firstNonEmpty(c.SamAccountName, c.Subject),
		FirstName:   firstNonEmpty(c.GivenName, c.FirstName),
		LastName:    firstNonEmpty(c.FamilyName, c.LastName),
		Email:       firstNonEmpty(c.Email, c.Mail),
		Groups:      slices.Compact(slices.Sorted(slices.Values(groups))),
		ExpiresAt:   expiresAt,
		AccessToken: accessToken,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
