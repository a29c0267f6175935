// Package multipart builds streaming multipart request bodies.
//
// A Descriptor is an ordered list of parts. Encode returns the content-type
// header carrying the boundary and a producer that serializes the parts on
// demand, so file and reader parts are never held in memory as a whole.
//
//	d := multipart.New().
//	    AddField("name", "report").
//	    AddFile("upload", "/tmp/report.pdf")
//	e.Body = d
package multipart
