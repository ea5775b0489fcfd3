package project

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// CFS scheduler period used to express fractional CPU limits, in
// microseconds.
const cpuPeriod uint64 = 100000

// Converts the limits into an OCI resource description.
//
// Memory accepts SI and IEC suffixes ("512MB", "1GiB"). CPUs is a positive
// decimal and becomes a CFS quota over [cpuPeriod]. Empty fields are left
// unset.
func (r Resources) Linux() (*specs.LinuxResources, error) {
	res := &specs.LinuxResources{}

	if m := strings.TrimSpace(r.Memory); m != "" {
		n, err := humanize.ParseBytes(m)
		if err != nil {
			return nil, fmt.Errorf("memory %q: %w", m, err)
		}
		if n == 0 || n > math.MaxInt64 {
			return nil, fmt.Errorf("memory %q out of range", m)
		}
		limit := int64(n)
		res.Memory = &specs.LinuxMemory{Limit: &limit}
	}

	if c := strings.TrimSpace(r.CPUs); c != "" {
		cpus, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, fmt.Errorf("cpus %q: %w", c, err)
		}
		if cpus <= 0 || math.IsInf(cpus, 0) || math.IsNaN(cpus) {
			return nil, fmt.Errorf("cpus %q must be positive", c)
		}
		quota := int64(math.Round(cpus * float64(cpuPeriod)))
		period := cpuPeriod
		res.CPU = &specs.LinuxCPU{Quota: &quota, Period: &period}
	}

	return res, nil
}
