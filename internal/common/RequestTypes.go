// This file contains the bodies the API sends back that are not model structs.

package common

type TokenResponse struct {
	Token string `json:"token"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}
