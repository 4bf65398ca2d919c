// Package remember keeps the last executed request and its response so later
// requests can refer to them.
//
// Documents live under .spag/remembers/. Every execution overwrites last.yml
// and the document named after the request (the method for ad-hoc requests,
// the file name for request files). Values are read back with dotted paths:
//
//	last.status
//	last.response.headers.Location
//	get.response.body.items.0.id
//
// Body paths are evaluated as gjson paths when the body is JSON.
package remember
