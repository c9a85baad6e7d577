// Package http provides HTTP handlers and middleware for the cleaning
// operations API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","staff"} with the token also surfaced
//     via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204.
//   - GET /staff, POST /staff, GET /staff/{id}, PUT /staff/{id},
//     DELETE /staff/{id}: workforce account management exchanging the
//     `staffDTO` payload defined in staff_handler.go. Mutations require
//     administrator privileges.
//   - GET /staff/{id}/availability, PUT /staff/{id}/availability: the
//     seven-day weekly availability structure. Staff edit their own week;
//     supervisors and administrators edit anyone's.
//   - GET/POST /sites, DELETE /sites/{id}; GET/POST /zones,
//     DELETE /zones/{id}; GET/POST /areas, GET/PUT/DELETE /areas/{id}:
//     location hierarchy management defined in location_handler.go.
//   - POST /areas/{id}/scan-token: mints the signed token embedded in an
//     area's printed code. Supervisors and administrators only.
//   - GET/POST /jobs, GET/PUT/DELETE /jobs/{id}: cleaning job templates with
//     their recurrence schedules, defined in job_handler.go.
//   - POST /tasks, GET /tasks, GET /tasks/{id}, POST /tasks/{id}/complete,
//     POST /tasks/{id}/verify: the task lifecycle, defined in
//     task_handler.go.
//   - GET /scan/{token}: resolves a scanned area code into the navigation
//     target for the caller's role. Works without authentication.
//   - GET /reports/compliance: downloads the compliance summary workbook.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
