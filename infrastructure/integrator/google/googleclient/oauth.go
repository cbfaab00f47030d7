package googleclient

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenSource troca um refresh token por um access token
type TokenSource interface {
	AccessToken(ctx context.Context, creds OAuthCredentials) (string, error)
}

type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// RefreshTokenSource usa o fluxo refresh_token do x/oauth2 contra o endpoint configurado
type RefreshTokenSource struct {
	TokenURL   string
	HTTPClient *http.Client
}

func (s *RefreshTokenSource) AccessToken(ctx context.Context, creds OAuthCredentials) (string, error) {
	if creds.RefreshToken == "" {
		return "", errors.New("refresh token is empty")
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	if s.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.HTTPClient)
	}

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}).Token()
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}
