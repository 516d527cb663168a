package network

import "context"

/* ConnectionProvider hides how a call reaches the server named by an
address string. The libp2p provider dials real peers; tests can dispatch
straight to a local receiver. A call to the empty address, or to the
provider's own address, is served locally. */
type ConnectionProvider interface {
	Call(ctx context.Context, server string, svcName string, svcMeth string, args interface{}, reply interface{}) error
}
