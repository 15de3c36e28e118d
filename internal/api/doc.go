// Package api handles incoming HTTP requests, request validation and response
// formatting for the task service. It adapts HTTP concerns to controller
// operations and maps classified errors onto status codes.
package api
