// Package datarequest implements a research data request workflow on top of a
// metadata aware object store.
//
// A researcher submits a request, data managers assign committee reviewers,
// reviewers submit reviews and the board of directors approves or rejects the
// request. Protected lifecycle attributes are only written by a privileged
// metadata agent that drains per principal change queues.
//
// End-users typically interact with the workflow via the Service facade or
// its positional remote calls:
//
//	srv, _ := datarequest.New(ctx, datarequest.DefaultConfig())
//	result := srv.Call(ctx, "alice", "submitDatarequest", `{"name":"Alice"}`)
//	requestID := result.Fields["requestId"]
package datarequest
