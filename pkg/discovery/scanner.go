package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultCommissionableTimeout = 5 * time.Second
	expirySweepInterval          = 60 * time.Second
)

// ScannerConfig configures a Scanner. Transport, Codec, and Clock default
// to their production implementations; tests inject mocks here instead.
type ScannerConfig struct {
	Transport    Transport
	Codec        Codec
	Clock        Clock
	TransportCfg TransportConfig

	// EnableIPv4 controls whether A records are requested/accepted
	// alongside AAAA. Matter prefers IPv6; IPv4 is opt-in.
	EnableIPv4 bool

	Logger *slog.Logger
}

// Scanner is the mDNS Scanner core: the single-threaded, event-driven
// DNS-SD state machine described by the package doc. All public methods
// are safe for concurrent use; internally they are serialised onto one
// event loop goroutine, matching the cooperative scheduling model.
type Scanner struct {
	cfg       ScannerConfig
	transport Transport
	codec     Codec
	clock     Clock
	logger    *slog.Logger

	cache      *cache
	scheduler  *scheduler
	waiters    *waiterRegistry
	correlator *correlator

	loop   chan func()
	ticker Ticker
	closed chan struct{}
}

// NewScanner builds a Scanner and starts its event loop, sweep timer, and
// inbound message handling. Call Close to release the transport and stop
// all timers.
func NewScanner(cfg ScannerConfig) (*Scanner, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = newSystemClock()
	}
	if cfg.Codec == nil {
		cfg.Codec = newDNSCodec()
	}
	if cfg.Transport == nil {
		t, err := newUDPTransport(cfg.TransportCfg, cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("discovery: create transport: %w", err)
		}
		cfg.Transport = t
	}

	s := &Scanner{
		cfg:       cfg,
		transport: cfg.Transport,
		codec:     cfg.Codec,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		loop:      make(chan func()),
		closed:    make(chan struct{}),
	}
	s.cache = newCache(cfg.Clock)
	s.scheduler = newScheduler(cfg.Clock, cfg.Codec, cfg.Transport, cfg.Logger)
	s.waiters = newWaiterRegistry(cfg.Clock)
	s.correlator = newCorrelator(s.cache, s.scheduler, s.waiters, cfg.EnableIPv4)

	s.transport.OnMessage(func(payload []byte, remoteIP, ifaceName string) {
		s.submit(func() { s.onMessage(payload, remoteIP, ifaceName) })
	})

	s.ticker = s.clock.NewTicker(expirySweepInterval, func() {
		s.submit(func() { s.cache.expireSweep(s.clock.Now()) })
	})

	go s.run()
	return s, nil
}

// run is the single event-loop goroutine. Every state mutation — cache,
// query table, waiter table — happens here, so none of it needs locks.
func (s *Scanner) run() {
	for {
		select {
		case fn := <-s.loop:
			fn()
		case <-s.closed:
			return
		}
	}
}

// submit runs fn on the event loop and blocks until it completes.
func (s *Scanner) submit(fn func()) {
	done := make(chan struct{})
	wrapped := func() {
		fn()
		close(done)
	}
	select {
	case s.loop <- wrapped:
		<-done
	case <-s.closed:
	}
}

func (s *Scanner) onMessage(payload []byte, remoteIP, ifaceName string) {
	msg, err := s.codec.Decode(payload)
	if err != nil || msg == nil {
		return // ParseFailure: silently dropped, per §7.
	}
	s.correlator.handleMessage(msg, remoteIP, ifaceName)
}

func (s *Scanner) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// FindOperationalDevice implements §4.7: a cache hit returns immediately;
// a miss installs an SRV query for the Matter QName and waits.
func (s *Scanner) FindOperationalDevice(ctx context.Context, matterQName string, timeoutSeconds float64, ignoreCache bool) (*OperationalDevice, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	var result *OperationalDevice
	var fut *future
	s.submit(func() {
		if !ignoreCache {
			if dev, ok := s.cache.operational[matterQName]; ok && dev.HasAddresses() {
				result = dev
				return
			}
		}
		fut = s.waiters.register(matterQName, timeoutSeconds, true)
		s.scheduler.setQueryRecords(matterQName, []Query{{Name: matterQName, RecordType: RecordTypeSRV, RecordClass: RecordClassIN}}, nil)
	})
	if result != nil || fut == nil {
		return result, nil
	}

	select {
	case <-fut.ch:
	case <-ctx.Done():
	case <-s.closed:
	}
	s.submit(func() {
		result = s.cache.operational[matterQName]
	})
	return result, nil
}

// CancelOperationalDeviceDiscovery finishes the waiter for matterQName.
func (s *Scanner) CancelOperationalDeviceDiscovery(matterQName string) {
	s.submit(func() {
		s.waiters.finish(matterQName, true, false)
	})
}

// FindCommissionableDevices implements §4.7: a cache hit (at least one
// record with >=1 address) returns immediately; a miss installs PTR
// queries and waits.
func (s *Scanner) FindCommissionableDevices(ctx context.Context, pred Predicate, timeoutSeconds float64, ignoreCache bool) ([]*CommissionableDevice, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultCommissionableTimeout.Seconds()
	}
	queryID, err := predicateQueryID(pred)
	if err != nil {
		return nil, err
	}

	var result []*CommissionableDevice
	var fut *future
	s.submit(func() {
		if !ignoreCache {
			if devs := matchingWithAddresses(s.cache.queryCommissionable(pred)); len(devs) > 0 {
				result = devs
				return
			}
		}
		fut = s.waiters.register(queryID, timeoutSeconds, true)
		s.scheduler.setQueryRecords(queryID, predicateQueries(pred), nil)
	})
	if fut == nil {
		return result, nil
	}

	select {
	case <-fut.ch:
	case <-ctx.Done():
	case <-s.closed:
	}
	s.submit(func() {
		result = matchingWithAddresses(s.cache.queryCommissionable(pred))
	})
	return result, nil
}

// FindCommissionableDevicesContinuously implements §4.7's streaming
// variant: install queries once, then loop emitting newly-seen devices
// (deduplicated by DeviceIdentifier) until timeoutSeconds elapses or
// cancelSignal fires.
func (s *Scanner) FindCommissionableDevicesContinuously(ctx context.Context, pred Predicate, onDevice func(*CommissionableDevice), timeoutSeconds float64, cancelSignal <-chan struct{}) error {
	if s.isClosed() {
		return ErrClosed
	}
	queryID, err := predicateQueryID(pred)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	s.submit(func() {
		s.scheduler.setQueryRecords(queryID, predicateQueries(pred), nil)
	})

	var deadline time.Time
	hasDeadline := timeoutSeconds > 0
	if hasDeadline {
		deadline = s.clock.Now().Add(secondsToDuration(timeoutSeconds))
	}

	for {
		s.submit(func() {
			for _, dev := range s.cache.queryCommissionable(pred) {
				if dev.HasAddresses() && !seen[dev.DeviceIdentifier] {
					seen[dev.DeviceIdentifier] = true
					onDevice(dev)
				}
			}
		})

		var waiterTimeout float64
		if hasDeadline {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return nil
			}
			waiterTimeout = remaining.Seconds()
		}

		// resolveOnUpdatedRecords=false: a streaming caller is woken by a
		// newly-matching device, not by a cache refresh of one it has
		// already seen, per §4.4.
		var fut *future
		s.submit(func() {
			fut = s.waiters.register(queryID, waiterTimeout, false)
		})

		select {
		case <-fut.ch:
		case <-cancelSignal:
			return nil
		case <-ctx.Done():
			return nil
		case <-s.closed:
			return nil
		}
	}
}

// GetDiscoveredOperationalDevice is a pure cache read.
func (s *Scanner) GetDiscoveredOperationalDevice(matterQName string) *OperationalDevice {
	var result *OperationalDevice
	s.submit(func() { result = s.cache.operational[matterQName] })
	return result
}

// GetDiscoveredCommissionableDevices is a pure cache read.
func (s *Scanner) GetDiscoveredCommissionableDevices(pred Predicate) []*CommissionableDevice {
	var result []*CommissionableDevice
	s.submit(func() { result = s.cache.queryCommissionable(pred) })
	return result
}

// Close marks the scanner closing, stops all timers, closes the
// transport, and finishes every waiter (resolving those that had a
// timeout).
func (s *Scanner) Close() error {
	if s.isClosed() {
		return nil
	}
	// Dropping every active query stops the re-broadcast timer and keeps
	// fire from re-arming it.
	s.submit(func() {
		for queryID := range s.scheduler.active {
			s.scheduler.removeQuery(queryID)
		}
	})
	close(s.closed)
	s.ticker.Stop()
	s.waiters.drain()
	return s.transport.Close()
}

func matchingWithAddresses(devs []*CommissionableDevice) []*CommissionableDevice {
	var out []*CommissionableDevice
	for _, d := range devs {
		if d.HasAddresses() {
			out = append(out, d)
		}
	}
	return out
}

func predicateQueryID(pred Predicate) (string, error) {
	switch pred.Kind {
	case PredicateInstance:
		if pred.InstanceID == "" {
			return "", ErrInvalidPredicate
		}
		return pred.InstanceID, nil
	case PredicateLongDiscriminator:
		return LongDiscriminatorSubtype(pred.LongDiscriminator), nil
	case PredicateShortDiscriminator:
		return ShortDiscriminatorSubtype(pred.ShortDiscriminator), nil
	case PredicateVendorProduct:
		return VendorProductKey(pred.VendorID, pred.ProductID), nil
	case PredicateVendor:
		return VendorIDSubtype(pred.VendorID), nil
	case PredicateDeviceType:
		return DeviceTypeSubtype(pred.DeviceType), nil
	case PredicateProduct:
		return ProductSubtype(pred.ProductID), nil
	case PredicateAny:
		return AnyCommissioningModeSubtype, nil
	default:
		return "", ErrInvalidPredicate
	}
}

// predicateQueries builds the PTR query set for a predicate: always the
// commission service PTR, plus the predicate-specific PTR when one
// exists, per §4.7.
func predicateQueries(pred Predicate) []Query {
	queries := []Query{{Name: ServiceCommissionable, RecordType: RecordTypePTR, RecordClass: RecordClassIN}}
	switch pred.Kind {
	case PredicateLongDiscriminator:
		queries = append(queries, Query{Name: subServiceName(LongDiscriminatorSubtype(pred.LongDiscriminator)), RecordType: RecordTypePTR, RecordClass: RecordClassIN})
	case PredicateShortDiscriminator:
		queries = append(queries, Query{Name: subServiceName(ShortDiscriminatorSubtype(pred.ShortDiscriminator)), RecordType: RecordTypePTR, RecordClass: RecordClassIN})
	case PredicateVendor, PredicateVendorProduct:
		queries = append(queries, Query{Name: subServiceName(VendorIDSubtype(pred.VendorID)), RecordType: RecordTypePTR, RecordClass: RecordClassIN})
	case PredicateDeviceType:
		queries = append(queries, Query{Name: subServiceName(DeviceTypeSubtype(pred.DeviceType)), RecordType: RecordTypePTR, RecordClass: RecordClassIN})
	case PredicateAny:
		queries = append(queries, Query{Name: subServiceName(AnyCommissioningModeSubtype), RecordType: RecordTypePTR, RecordClass: RecordClassIN})
	case PredicateInstance:
		queries = append(queries, Query{Name: pred.InstanceID + "." + ServiceCommissionable, RecordType: RecordTypePTR, RecordClass: RecordClassIN})
	}
	return queries
}
