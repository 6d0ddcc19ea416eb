// Package api exposes the command API over HTTP and provides a matching client.
//
// Routes:
//
//	POST   /v1/processes        create, body is a process.Spec
//	DELETE /v1/processes/{pid}  kill
//	GET    /v1/processes        list, optional repeated ?state= filter
//	GET    /v1/memory           memory status
//	GET    /v1/stats            scheduling counters
//
// Errors are returned as {"error": "..."} with 400 for an invalid argument,
// 404 for an unknown pid and 507 when memory is exhausted.
package api
