package project

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/mem"
)

const (

	// Forces the constrained-host behavior on or off.
	ConstrainedHostEnv = "CHERRY_CONSTRAINED_HOST"

	// Hosts with less physical memory are treated as constrained when the
	// environment does not say otherwise.
	constrainedMemory = 2 * humanize.GiByte
)

// Reports physical memory. Replaced in tests.
var totalMemory = func() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}

// Facts about the machine the containers run on.
type Host struct {
	Constrained bool // Small host: lighter logging configuration.
}

// Inspects the environment and the machine.
//
// [ConstrainedHostEnv] decides when set to a boolean. Otherwise a host with
// less than 2 GiB of memory is constrained. Detection failures fall back to
// an unconstrained host.
func DetectHost(getenv func(string) string) Host {
	if getenv != nil {
		if v := strings.TrimSpace(getenv(ConstrainedHostEnv)); v != "" {
			b, err := strconv.ParseBool(v)
			if err == nil {
				return Host{Constrained: b}
			}
			slog.Warn("ignoring malformed environment variable", "name", ConstrainedHostEnv, "value", v)
		}
	}

	total, err := totalMemory()
	if err != nil {
		slog.Debug("could not read host memory", "error", err)
		return Host{}
	}

	constrained := total < constrainedMemory
	slog.Debug("detected host", "memory", humanize.IBytes(total), "constrained", constrained)
	return Host{Constrained: constrained}
}

// Returns the logging driver matching the host.
func (l Logging) For(h Host) LogDriver {
	if h.Constrained {
		return l.Constrained
	}
	return l.Default
}
