// Package apiclient is the client side of the EnvironmentCreator API.
//
// WebClient is the bearer-token transport. It sends JSON bodies and returns the raw payload, or a *RequestError
// for anything that is not a 2xx response. The resource clients (UserApiClient, EnvironmentApiClient,
// ObjectApiClient) translate models to and from that transport. ObjectApiClient is the store the editor saves through.
package apiclient
