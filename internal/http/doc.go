// Package http provides HTTP handlers and middleware for the coordinator API.
//
// The router exposes the following endpoints:
//   - POST /schedule: accepts a meeting request ({"request_id","datetime",
//     "from","attendees":[{"email"}],"subject","email_content","location"})
//     and responds with the scheduling decision, including the chosen slot or
//     an explicit infeasibility marker with diagnostics.
//   - GET /decisions: lists recently recorded decisions, newest first. The
//     `limit` query parameter caps the result size.
//   - GET /decisions/{request_id}: returns the newest recorded decision for a
//     request id.
//   - GET /health: reports service and database liveness.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
