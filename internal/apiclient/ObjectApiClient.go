package apiclient

import (
	"context"
	"fmt"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
)

type ObjectApiClient struct {
	webClient *WebClient
}

func NewObjectApiClient(webClient *WebClient) *ObjectApiClient {
	return &ObjectApiClient{webClient: webClient}
}

// Create posts an unpersisted object and returns the stored record. Identity checks on the result are left to the caller.
func (c *ObjectApiClient) Create(ctx context.Context, obj object.PlacedObject) (object.PlacedObject, error) {
	obj.ID = 0
	payload, err := c.webClient.Post(ctx, "/api/Objects", obj)
	if err != nil {
		return object.PlacedObject{}, err
	}
	return decode[object.PlacedObject](payload)
}

func (c *ObjectApiClient) Update(ctx context.Context, obj object.PlacedObject) (object.PlacedObject, error) {
	if !obj.IsPersisted() {
		return object.PlacedObject{}, fmt.Errorf("updating object without identity %d", obj.ID)
	}
	payload, err := c.webClient.Put(ctx, fmt.Sprintf("/api/Objects/%d", obj.ID), obj)
	if err != nil {
		return object.PlacedObject{}, err
	}
	return decode[object.PlacedObject](payload)
}

func (c *ObjectApiClient) Get(ctx context.Context, objectID int) (object.PlacedObject, error) {
	payload, err := c.webClient.Get(ctx, fmt.Sprintf("/api/Objects/%d", objectID))
	if err != nil {
		return object.PlacedObject{}, err
	}
	return decode[object.PlacedObject](payload)
}

func (c *ObjectApiClient) ListByEnvironment(ctx context.Context, environmentID int) ([]object.PlacedObject, error) {
	payload, err := c.webClient.Get(ctx, fmt.Sprintf("/api/Objects/environment/%d", environmentID))
	if err != nil {
		return nil, err
	}
	return decode[[]object.PlacedObject](payload)
}

func (c *ObjectApiClient) Delete(ctx context.Context, objectID int) error {
	_, err := c.webClient.Delete(ctx, fmt.Sprintf("/api/Objects/%d", objectID))
	return err
}
