// Package adapter runs a request environment through an HTTP engine.
//
// A call goes through four steps:
//
//   - Resolve merges option tiers and splits them into the engine view and
//     the adapter view.
//   - Encode picks the engine request form from the body shape.
//   - The engine selected by the "profile" option executes the request.
//   - Decode writes status, lower-cased headers and one binary body back
//     into the environment. Connection failures are normalized to a single
//     ECONNREFUSED error by Normalize.
//
// Auto redirects are off unless the caller turns them on. When the platform
// trust store is available a verifying ssl block is injected by default.
package adapter
