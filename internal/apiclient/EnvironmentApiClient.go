package apiclient

import (
	"context"
	"fmt"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
)

type EnvironmentApiClient struct {
	webClient *WebClient
}

func NewEnvironmentApiClient(webClient *WebClient) *EnvironmentApiClient {
	return &EnvironmentApiClient{webClient: webClient}
}

func (c *EnvironmentApiClient) List(ctx context.Context) ([]environment.Environment, error) {
	payload, err := c.webClient.Get(ctx, "/api/environment")
	if err != nil {
		return nil, err
	}
	return decode[[]environment.Environment](payload)
}

func (c *EnvironmentApiClient) Get(ctx context.Context, environmentID int) (environment.Environment, error) {
	payload, err := c.webClient.Get(ctx, fmt.Sprintf("/api/environment/%d", environmentID))
	if err != nil {
		return environment.Environment{}, err
	}
	return decode[environment.Environment](payload)
}

// Create sends name and bounds. Identity and owner are assigned by the server.
func (c *EnvironmentApiClient) Create(ctx context.Context, env environment.Environment) (environment.Environment, error) {
	body := struct {
		Name      string `json:"name"`
		MaxWidth  int    `json:"maxWidth"`
		MaxHeight int    `json:"maxHeight"`
	}{env.Name, env.MaxWidth, env.MaxHeight}

	payload, err := c.webClient.Post(ctx, "/api/environment", body)
	if err != nil {
		return environment.Environment{}, err
	}
	return decode[environment.Environment](payload)
}

func (c *EnvironmentApiClient) Delete(ctx context.Context, environmentID int) error {
	_, err := c.webClient.Delete(ctx, fmt.Sprintf("/api/environment/%d", environmentID))
	return err
}
