// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// cpuDetectTimeout is the default timeout for a full detection pass.
const cpuDetectTimeout = 10 * time.Second

var (
	// ErrBrandUnknown is returned by Validate when no probe reported a brand.
	ErrBrandUnknown = errors.New("cpu brand string unavailable")
	// ErrCacheUnknown is returned by Validate when no probe reported an L2 size.
	ErrCacheUnknown = errors.New("l2 cache size unavailable")
)

// =============================================================================
// CPU INFO
// =============================================================================

// CPUInfo contains information about the host CPU.
type CPUInfo struct {
	// Brand is the marketing name (e.g., "Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz")
	Brand string `json:"brand"`
	// Vendor is the vendor identification string
	Vendor string `json:"vendor,omitempty"`

	// Cache sizes in kilobytes, 0 when unknown
	L1DataKB int `json:"l1d_kb"`
	L2KB     int `json:"l2_kb"`
	L3KB     int `json:"l3_kb"`

	// CacheLineBytes is the coherency line size
	CacheLineBytes int `json:"cache_line_bytes,omitempty"`

	PhysicalCores int      `json:"physical_cores,omitempty"`
	LogicalCores  int      `json:"logical_cores,omitempty"`
	Features      []string `json:"features,omitempty"`

	// Source lists the probes that contributed, joined with "+"
	Source string `json:"source"`
}

// String returns a one-line summary of the CPU.
func (c *CPUInfo) String() string {
	s := c.Brand
	if s == "" {
		s = "unknown CPU"
	}
	return fmt.Sprintf("%s (L1d %dKB, L2 %dKB, L3 %dKB)", s, c.L1DataKB, c.L2KB, c.L3KB)
}

// Validate reports whether the fields the plot pipeline depends on are known.
func (c *CPUInfo) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Brand) == "" {
		errs = append(errs, ErrBrandUnknown)
	}
	if c.L2KB <= 0 {
		errs = append(errs, ErrCacheUnknown)
	}
	return errors.Join(errs...)
}

// WithOverrides returns a copy of c with the brand and L2 size replaced by
// any non-zero override.
func (c *CPUInfo) WithOverrides(brand string, l2KB int) *CPUInfo {
	out := c.clone()
	overridden := false
	if brand != "" {
		out.Brand = brand
		overridden = true
	}
	if l2KB > 0 {
		out.L2KB = l2KB
		overridden = true
	}
	if overridden {
		out.Source = joinSource(out.Source, "override")
	}
	return out
}

func (c *CPUInfo) clone() *CPUInfo {
	out := *c
	if c.Features != nil {
		out.Features = append([]string(nil), c.Features...)
	}
	return &out
}

// merge fills every unknown field of c from other.
func (c *CPUInfo) merge(other *CPUInfo) {
	if c.Brand == "" {
		c.Brand = other.Brand
	}
	if c.Vendor == "" {
		c.Vendor = other.Vendor
	}
	if c.L1DataKB <= 0 {
		c.L1DataKB = other.L1DataKB
	}
	if c.L2KB <= 0 {
		c.L2KB = other.L2KB
	}
	if c.L3KB <= 0 {
		c.L3KB = other.L3KB
	}
	if c.CacheLineBytes <= 0 {
		c.CacheLineBytes = other.CacheLineBytes
	}
	if c.PhysicalCores <= 0 {
		c.PhysicalCores = other.PhysicalCores
	}
	if c.LogicalCores <= 0 {
		c.LogicalCores = other.LogicalCores
	}
	if len(c.Features) == 0 {
		c.Features = other.Features
	}
}

// empty reports whether no probe has contributed anything useful yet.
func (c *CPUInfo) empty() bool {
	return c.Brand == "" && c.L1DataKB <= 0 && c.L2KB <= 0 && c.L3KB <= 0
}

func joinSource(a, b string) string {
	if a == "" {
		return b
	}
	return a + "+" + b
}

// =============================================================================
// PROBES
// =============================================================================

// Probe is a named source of CPU information. Run may return a partially
// filled CPUInfo; zero fields mean unknown.
type Probe struct {
	Name string
	Run  func(ctx context.Context) (*CPUInfo, error)
}

// Detector runs probes in order and merges their results.
type Detector struct {
	probes []Probe
}

// NewDetector creates a detector over the given probes.
func NewDetector(probes ...Probe) *Detector {
	return &Detector{probes: probes}
}

// DefaultProbes returns the probes used on this platform.
func DefaultProbes() []Probe {
	return []Probe{cpuidProbe(), platformProbe()}
}

// Detect runs every probe and merges the results. Probe failures are only
// reported when no probe produced anything.
func (d *Detector) Detect(ctx context.Context) (*CPUInfo, error) {
	info := &CPUInfo{}
	var probeErrs []error

	for _, p := range d.probes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		got, err := p.Run(ctx)
		if err != nil {
			probeErrs = append(probeErrs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		if got == nil || got.empty() {
			continue
		}

		info.merge(got)
		info.Source = joinSource(info.Source, p.Name)
	}

	if info.empty() && len(probeErrs) > 0 {
		return info, errors.Join(probeErrs...)
	}
	return info, nil
}

// =============================================================================
// PACKAGE-LEVEL DETECTION AND CACHE
// =============================================================================

var (
	defaultDetector = NewDetector(DefaultProbes()...)

	cpuCache         *CPUInfo
	cpuCacheTime     time.Time
	cpuCacheMu       sync.Mutex
	cpuCacheDuration = 5 * time.Minute
)

// DetectCPU detects the host CPU with the default probes.
func DetectCPU() (*CPUInfo, error) {
	return DetectCPUWithContext(context.Background())
}

// DetectCPUWithContext detects the host CPU with context support.
// CANCELLATION: Context enables timeout and cancellation
func DetectCPUWithContext(ctx context.Context) (*CPUInfo, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cpuDetectTimeout)
		defer cancel()
	}
	return defaultDetector.Detect(ctx)
}

// DetectCPUCached returns the cached detection result if it is fresh,
// otherwise performs a full detection and caches it. Callers get a copy.
func DetectCPUCached(ctx context.Context) (*CPUInfo, error) {
	cpuCacheMu.Lock()
	defer cpuCacheMu.Unlock()

	if cpuCache != nil && time.Since(cpuCacheTime) < cpuCacheDuration {
		return cpuCache.clone(), nil
	}

	info, err := DetectCPUWithContext(ctx)
	if err != nil {
		return nil, err
	}

	cpuCache = info
	cpuCacheTime = time.Now()
	return info.clone(), nil
}

// ClearCPUCache forces fresh detection on the next DetectCPUCached call.
func ClearCPUCache() {
	cpuCacheMu.Lock()
	defer cpuCacheMu.Unlock()
	cpuCache = nil
	cpuCacheTime = time.Time{}
}
