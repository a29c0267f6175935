// Package env defines the request environment exchanged with the adapter.
//
// An Env carries the outgoing request (method, URL, query, headers, body,
// per-call options) and a response slot the adapter fills in. The caller owns
// the value; the adapter reads the request fields and writes Status,
// ResponseHeaders and ResponseBody.
//
// Body is a closed set of variants:
//
//	env.Raw("payload")                  // single binary
//	env.Stream{Reader: f}               // lazy byte stream
//	env.Producer(seq)                   // producer function
//	multipart.New().AddField("a", "1")  // multipart descriptor
//
// A nil Body means the request has no body.
package env
