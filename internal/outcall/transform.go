package outcall

// StripHeaders is the response transform registered with the host.
//
// It keeps the status and body verbatim and drops every header, since headers
// such as Date differ between replicas even when the RPC server answered
// identically. The result depends only on the argument.
func StripHeaders(resp Response) Response {
	return Response{
		Status:  resp.Status,
		Headers: []Header{},
		Body:    resp.Body,
	}
}
