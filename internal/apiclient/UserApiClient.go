package apiclient

import (
	"context"
	"fmt"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserApiClient struct {
	webClient *WebClient
}

func NewUserApiClient(webClient *WebClient) *UserApiClient {
	return &UserApiClient{webClient: webClient}
}

func (c *UserApiClient) Register(ctx context.Context, username, password string) error {
	_, err := c.webClient.Post(ctx, "/account/register", credentials{Username: username, Password: password})
	return err
}

// Login exchanges credentials for a token. On success the token is also set on the WebClient.
func (c *UserApiClient) Login(ctx context.Context, username, password string) (string, error) {
	payload, err := c.webClient.Post(ctx, "/account/login", credentials{Username: username, Password: password})
	if err != nil {
		return "", err
	}

	resp, err := decode[struct {
		Token string `json:"token"`
	}](payload)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login response has no token", ErrMalformedResponse)
	}

	c.webClient.SetToken(resp.Token)
	return resp.Token, nil
}
