package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/libp2p/go-libp2p-core/peer"
	gorpc "github.com/libp2p/go-libp2p-gorpc"
	"github.com/multiformats/go-multiaddr"
)

const rpcProtocolID = "/p2p/rpc/myrsa"

// DefaultListenAddr listens on every interface on a random port.
const DefaultListenAddr = "/ip4/0.0.0.0/tcp/0"

// Libp2pConnectionProvider implements the ConnectionProvider interface using libp2p
type Libp2pConnectionProvider struct {
	Host   host.Host
	Client *gorpc.Client
	Server *gorpc.Server
}

func (cp *Libp2pConnectionProvider) Call(ctx context.Context, server string, svcName string, svcMeth string, args interface{}, reply interface{}) error {
	if server == "" {
		return cp.Client.CallContext(ctx, cp.Host.ID(), svcName, svcMeth, args, reply)
	}
	ma, err := multiaddr.NewMultiaddr(server)
	if err != nil {
		return fmt.Errorf("parsing server address %q: %w", server, err)
	}
	peerInfo, err := peer.AddrInfoFromP2pAddr(ma)
	if err != nil {
		return fmt.Errorf("server address %q: %w", server, err)
	}

	if peerInfo.ID != cp.Host.ID() {
		if err := cp.Host.Connect(ctx, *peerInfo); err != nil {
			return fmt.Errorf("connecting to %s (%s.%s): %w", peerInfo.ID, svcName, svcMeth, err)
		}
	}
	return cp.Client.CallContext(ctx, peerInfo.ID, svcName, svcMeth, args, reply)
}

// Register exposes the exported methods of rcvr to remote callers under the
// receiver's type name.
func (cp *Libp2pConnectionProvider) Register(rcvr interface{}) error {
	return cp.Server.Register(rcvr)
}

// NewLibp2p starts a libp2p host listening on listenAddr, with an RPC
// server and a client that serves calls addressed to itself locally.
func NewLibp2p(ctx context.Context, listenAddr string) (*Libp2pConnectionProvider, error) {
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}
	h, err := libp2p.New(ctx, libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		return nil, fmt.Errorf("creating libp2p host: %w", err)
	}
	cp := &Libp2pConnectionProvider{Host: h}
	cp.Server = gorpc.NewServer(cp.Host, rpcProtocolID)
	cp.Client = gorpc.NewClientWithServer(cp.Host, rpcProtocolID, cp.Server)
	return cp, nil
}

func (cp *Libp2pConnectionProvider) Close() error {
	return cp.Host.Close()
}

// Me returns a full address (including the peer id) others can call this
// host on. Non-loopback addresses are preferred.
func (cp *Libp2pConnectionProvider) Me() string {
	pi := peer.AddrInfo{
		ID:    cp.Host.ID(),
		Addrs: cp.Host.Addrs(),
	}
	addrs, err := peer.AddrInfoToP2pAddrs(&pi)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	chosenAddr := addrs[0].String()
	for _, addr := range addrs {
		if !strings.Contains(addr.String(), "127.0.0.1") {
			chosenAddr = addr.String()
		}
	}
	return chosenAddr
}
