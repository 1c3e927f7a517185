// Package objects exposes the file-storage view of the sync containers over HTTP.
//
// # Endpoints
//
//   - GET    /objects: served containers
//   - GET    /objects/:container?path=: list files below path
//   - HEAD   /objects/:container/*: existence, size, type and modification time
//   - GET    /objects/:container/*: download
//   - PUT    /objects/:container/*: upload the request body
//   - DELETE /objects/:container/*: delete
//
// Only containers configured for a sync target are served.
package objects
