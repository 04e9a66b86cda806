package discovery

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// udpTransport is the production Transport: a dual-stack mDNS multicast
// UDP socket built directly on golang.org/x/net/ipv4 and ipv6, joining the
// mDNS group on every multicast-capable interface.
type udpTransport struct {
	conn4 *ipv4.PacketConn
	conn6 *ipv6.PacketConn
	raw4  net.PacketConn
	raw6  net.PacketConn

	group4 *net.UDPAddr
	group6 *net.UDPAddr

	logger *slog.Logger

	mu      sync.Mutex
	handler MessageHandler
	closed  bool
	wg      sync.WaitGroup
}

func newUDPTransport(cfg TransportConfig, logger *slog.Logger) (*udpTransport, error) {
	addr4 := cfg.BroadcastAddressIPv4
	if addr4 == "" {
		addr4 = MulticastIPv4
	}
	addr6 := cfg.BroadcastAddressIPv6
	if addr6 == "" {
		addr6 = MulticastIPv6
	}
	port := cfg.ListeningPort
	if port == 0 {
		port = MulticastPort
	}

	ifaces, err := multicastInterfaces(cfg.NetInterface)
	if err != nil {
		return nil, err
	}

	raw4, err := net.ListenPacket("udp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("discovery: listen udp4: %w", err)
	}
	raw6, err := net.ListenPacket("udp6", fmt.Sprintf(":%d", port))
	if err != nil {
		raw4.Close()
		return nil, fmt.Errorf("discovery: listen udp6: %w", err)
	}

	t := &udpTransport{
		raw4:   raw4,
		raw6:   raw6,
		conn4:  ipv4.NewPacketConn(raw4),
		conn6:  ipv6.NewPacketConn(raw6),
		group4: &net.UDPAddr{IP: net.ParseIP(addr4), Port: port},
		group6: &net.UDPAddr{IP: net.ParseIP(addr6), Port: port},
		logger: logger,
	}

	_ = t.conn6.SetControlMessage(ipv6.FlagInterface, true)
	for i := range ifaces {
		iface := &ifaces[i]
		_ = t.conn4.JoinGroup(iface, t.group4)
		_ = t.conn6.JoinGroup(iface, t.group6)
	}

	t.wg.Add(2)
	go t.readLoop4()
	go t.readLoop6()

	return t, nil
}

func multicastInterfaces(name string) ([]net.Interface, error) {
	if name != "" {
		iface, err := net.InterfaceByName(name)
		if err != nil {
			return nil, fmt.Errorf("discovery: interface %s: %w", name, err)
		}
		return []net.Interface{*iface}, nil
	}
	all, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []net.Interface
	for _, iface := range all {
		if iface.Flags&net.FlagMulticast != 0 && iface.Flags&net.FlagUp != 0 {
			out = append(out, iface)
		}
	}
	return out, nil
}

func (t *udpTransport) OnMessage(handler MessageHandler) {
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()
}

func (t *udpTransport) Send(payload []byte) error {
	_, err4 := t.raw4.WriteTo(payload, t.group4)
	_, err6 := t.raw6.WriteTo(payload, t.group6)
	if err4 != nil {
		return fmt.Errorf("%w: %v", ErrTransportSend, err4)
	}
	if err6 != nil {
		return fmt.Errorf("%w: %v", ErrTransportSend, err6)
	}
	return nil
}

func (t *udpTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	err4 := t.raw4.Close()
	err6 := t.raw6.Close()
	t.wg.Wait()
	if err4 != nil {
		return err4
	}
	return err6
}

func (t *udpTransport) readLoop4() {
	defer t.wg.Done()
	buf := make([]byte, MaxMessageSize*4)
	for {
		n, _, src, err := t.conn4.ReadFrom(buf)
		if err != nil {
			return
		}
		t.dispatch(buf[:n], src, "")
	}
}

func (t *udpTransport) readLoop6() {
	defer t.wg.Done()
	buf := make([]byte, MaxMessageSize*4)
	for {
		n, cm, src, err := t.conn6.ReadFrom(buf)
		if err != nil {
			return
		}
		ifaceName := ""
		if cm != nil {
			if iface, err := interfaceNameByIndex(cm.IfIndex); err == nil {
				ifaceName = iface
			}
		}
		t.dispatch(buf[:n], src, ifaceName)
	}
}

func interfaceNameByIndex(index int) (string, error) {
	iface, err := net.InterfaceByIndex(index)
	if err != nil {
		return "", err
	}
	return iface.Name, nil
}

func (t *udpTransport) dispatch(payload []byte, src net.Addr, ifaceName string) {
	t.mu.Lock()
	handler := t.handler
	closed := t.closed
	t.mu.Unlock()
	if closed || handler == nil {
		return
	}
	remoteIP := src.String()
	if host, _, err := net.SplitHostPort(remoteIP); err == nil {
		remoteIP = host
	}
	handler(payload, remoteIP, ifaceName)
}
