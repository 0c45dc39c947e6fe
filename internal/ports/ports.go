package ports

import (
	"fmt"
	"math"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

const (
	// DefaultPort is the remote-control port used when none is given.
	DefaultPort uint16 = 15702
	// MaxValidPort is the highest port an instance may be assigned. 65535 is
	// kept free so a port range end never wraps.
	MaxValidPort uint16 = 65534
	// EnvVar carries the assigned port into every launched process.
	EnvVar = "BRP_EXTRAS_PORT"
)

// RangeReason identifies why a port range was rejected.
type RangeReason int

const (
	TooManyInstances RangeReason = iota
	ExceedsCeiling
)

// RangeError reports a port range that cannot be allocated.
type RangeError struct {
	Reason  RangeReason
	Base    uint16
	Count   int
	Highest int
}

func (e *RangeError) Error() string {
	if e.Reason == TooManyInstances {
		return fmt.Sprintf("Instance count %d is too large (maximum is %d)", e.Count, math.MaxUint16)
	}
	return fmt.Sprintf("Port range %d to %d exceeds maximum valid port %d", e.Base, e.Highest, MaxValidPort)
}

// Highest returns the last port of a range of count ports starting at base,
// saturating at the uint16 maximum.
func Highest(base uint16, count int) (int, error) {
	if count < 0 || count > math.MaxUint16 {
		return 0, &RangeError{Reason: TooManyInstances, Base: base, Count: count}
	}
	span := count - 1
	if span < 0 {
		span = 0
	}
	highest := int(base) + span
	if highest > math.MaxUint16 {
		highest = math.MaxUint16
	}
	return highest, nil
}

// Allocate returns count consecutive ports starting at base. It never
// produces a port above MaxValidPort and never wraps.
func Allocate(base uint16, count int) ([]uint16, error) {
	highest, err := Highest(base, count)
	if err != nil {
		return nil, err
	}
	if highest > int(MaxValidPort) {
		return nil, &RangeError{Reason: ExceedsCeiling, Base: base, Count: count, Highest: highest}
	}
	out := make([]uint16, 0, count)
	for p := int(base); p <= highest && len(out) < count; p++ {
		out = append(out, uint16(p))
	}
	return out, nil
}

// FormatRange renders "N" for one port and "first-last" otherwise.
func FormatRange(ports []uint16) string {
	switch len(ports) {
	case 0:
		return ""
	case 1:
		return strconv.Itoa(int(ports[0]))
	}
	return fmt.Sprintf("%d-%d", ports[0], ports[len(ports)-1])
}

// IsPortAvailable checks if a port is available for binding on localhost.
func IsPortAvailable(port uint16) bool {
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// Busy returns the subset of ports that something is already listening on.
func Busy(ports []uint16) []uint16 {
	var busy []uint16
	for _, p := range ports {
		if !IsPortAvailable(p) {
			busy = append(busy, p)
		}
	}
	return busy
}

// ProcessOnPort returns the PID of a process listening on the given port.
// Returns 0 if no process is found or the lookup tool is unavailable.
func ProcessOnPort(port uint16) int {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin", "linux":
		cmd = exec.Command("lsof", "-i", fmt.Sprintf(":%d", port), "-t", "-sTCP:LISTEN")
	case "windows":
		cmd = exec.Command("cmd", "/C", fmt.Sprintf("netstat -ano | findstr :%d | findstr LISTENING", port))
	default:
		return 0
	}

	output, err := cmd.Output()
	if err != nil {
		return 0
	}
	return parsePID(string(output), runtime.GOOS == "windows")
}

// parsePID takes the first PID from lsof -t output, or the last column of
// the first netstat line.
func parsePID(output string, netstat bool) int {
	output = strings.TrimSpace(output)
	if output == "" {
		return 0
	}
	line := strings.TrimSpace(strings.SplitN(output, "\n", 2)[0])
	if netstat {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return 0
		}
		line = fields[len(fields)-1]
	}
	pid, err := strconv.Atoi(line)
	if err != nil {
		return 0
	}
	return pid
}
