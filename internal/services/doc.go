// Package services contains the implementation of all services used by the web server.
//
// The services are responsible for interacting with the database and performing anything that is not strictly HTTP-related.
// The services are injected into the web server, and are used to handle requests dispatched by it.
//
// Current services include:
//   - ClientService:
//     Is the main handler for dispatched http requests. It checks ownership of environments, enforces the environment
//     rules, and reads and writes users, environments and placed objects through the stores in Stores.go.
//   - EventService:
//     Is an AMQP 0.9.1 publisher that announces every successful write as a ChangeEvent on a topic exchange.
package services
