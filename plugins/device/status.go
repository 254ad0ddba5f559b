package device

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusUp      Status = "Up"
	StatusDown    Status = "Down"
	StatusUnknown Status = "Unknown"
)

const (
	oidSysUpTime    = ".1.3.6.1.2.1.1.3.0"
	maxStatusChecks = 16
)

var ErrInvalidIPAddress = errors.New("invalid IP address")

var now = time.Now

// DeviceStatus is a device annotated with the result of its last status check.
type DeviceStatus struct {
	Device
	Status    Status `json:"status" yaml:"status"`
	LastCheck string `json:"last_check" yaml:"last_check"`
}

// SNMPChecker reports a device as up when it answers an SNMP v2c GET of
// sysUpTime.
type SNMPChecker struct {
	community string
	port      uint16
	timeout   time.Duration
	retries   int
}

func NewSNMPChecker(snmpConfig SNMPConfig) *SNMPChecker {
	checker := &SNMPChecker{
		community: snmpConfig.Community,
		port:      snmpConfig.Port,
		timeout:   snmpConfig.Timeout,
		retries:   snmpConfig.Retries,
	}
	if checker.port == 0 {
		checker.port = defaultSNMPPort
	}
	if checker.timeout <= 0 {
		checker.timeout = defaultSNMPTimeout
	}
	return checker
}

func (c *SNMPChecker) Check(ctx context.Context, ipAddress string) (Status, error) {
	addr, err := parseIPv4(ipAddress)
	if err != nil {
		return StatusUnknown, err
	}
	snmp := &gosnmp.GoSNMP{
		Target:    addr.String(),
		Port:      c.port,
		Community: c.community,
		Version:   gosnmp.Version2c,
		Timeout:   c.timeout,
		Retries:   c.retries,
		Context:   ctx,
	}
	if err := snmp.Connect(); err != nil {
		log.Debugf("SNMP connect to %s: %v", ipAddress, err)
		return StatusDown, nil
	}
	defer snmp.Conn.Close()

	if _, err := snmp.Get([]string{oidSysUpTime}); err != nil {
		log.Debugf("SNMP get sysUpTime from %s: %v", ipAddress, err)
		return StatusDown, nil
	}
	return StatusUp, nil
}

// parseIPv4 accepts dotted-decimal IPv4 addresses. Octets may carry leading
// zeros up to three digits ("192.168.001.001"), they are read as decimal.
func parseIPv4(ipAddress string) (netip.Addr, error) {
	invalid := fmt.Errorf("%w: %q", ErrInvalidIPAddress, ipAddress)
	parts := strings.Split(ipAddress, ".")
	if len(parts) != 4 {
		return netip.Addr{}, invalid
	}
	var octets [4]byte
	for i, part := range parts {
		if len(part) == 0 || len(part) > 3 {
			return netip.Addr{}, invalid
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return netip.Addr{}, invalid
			}
		}
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return netip.Addr{}, invalid
		}
		octets[i] = byte(n)
	}
	return netip.AddrFrom4(octets), nil
}

// CheckAll checks every device. A device whose address cannot be checked is
// reported as Unknown, the error is only logged.
func CheckAll(ctx context.Context, checker StatusChecker, devices []*Device) []DeviceStatus {
	statuses := make([]DeviceStatus, len(devices))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxStatusChecks)
	for i, d := range devices {
		i, d := i, d
		g.Go(func() error {
			status, err := checker.Check(ctx, d.IPAddress)
			if err != nil {
				log.Errorf("check device %d (%s): %v", d.ID, d.IPAddress, err)
				status = StatusUnknown
			}
			statuses[i] = DeviceStatus{
				Device:    *d,
				Status:    status,
				LastCheck: now().Format(time.RFC3339),
			}
			return nil
		})
	}
	_ = g.Wait()
	return statuses
}
