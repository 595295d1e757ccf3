// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

const (
	sysfsCacheGlob = "sys/devices/system/cpu/cpu0/cache/index*"
	procCPUInfo    = "proc/cpuinfo"
)

// probeSysfs reads cache geometry from sysfs and identity from
// /proc/cpuinfo. fsys is rooted at "/".
func probeSysfs(fsys fs.FS) (*CPUInfo, error) {
	info := &CPUInfo{}

	if err := readSysfsCaches(fsys, info); err != nil {
		return nil, err
	}

	if f, err := fsys.Open(procCPUInfo); err == nil {
		defer f.Close()
		brand, vendor, logical := parseProcCPUInfo(f)
		info.Brand = brand
		info.Vendor = vendor
		info.LogicalCores = logical
	}

	return info, nil
}

// readSysfsCaches fills the cache fields of info from cpu0's cache index
// directories. Missing directories are not an error.
func readSysfsCaches(fsys fs.FS, info *CPUInfo) error {
	dirs, err := fs.Glob(fsys, sysfsCacheGlob)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		level, err := readTrimmed(fsys, path.Join(dir, "level"))
		if err != nil {
			continue
		}
		kind, _ := readTrimmed(fsys, path.Join(dir, "type"))
		sizeText, err := readTrimmed(fsys, path.Join(dir, "size"))
		if err != nil {
			continue
		}
		size, err := parseCacheSize(sizeText)
		if err != nil {
			continue
		}

		switch {
		case level == "1" && kind == "Data":
			info.L1DataKB = size
		case level == "2":
			info.L2KB = size
		case level == "3":
			info.L3KB = size
		}

		if info.CacheLineBytes == 0 {
			if line, err := readTrimmed(fsys, path.Join(dir, "coherency_line_size")); err == nil {
				info.CacheLineBytes, _ = strconv.Atoi(line)
			}
		}
	}
	return nil
}

// parseCacheSize converts a sysfs size ("32K", "8M", "1048576") to KB.
// A bare number is taken as bytes.
func parseCacheSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty cache size")
	}

	multiplier := 0
	switch s[len(s)-1] {
	case 'K', 'k':
		multiplier = 1
	case 'M', 'm':
		multiplier = 1024
	case 'G', 'g':
		multiplier = 1024 * 1024
	}

	if multiplier == 0 {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid cache size %q: %w", s, err)
		}
		return n / 1024, nil
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid cache size %q: %w", s, err)
	}
	return n * multiplier, nil
}

// parseProcCPUInfo extracts the first model name, the vendor id and the
// number of logical processors from /proc/cpuinfo content.
func parseProcCPUInfo(r io.Reader) (brand, vendor string, logical int) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "processor":
			logical++
		case "model name", "Model":
			if brand == "" {
				brand = value
			}
		case "vendor_id":
			if vendor == "" {
				vendor = value
			}
		}
	}
	return brand, vendor, logical
}

func readTrimmed(fsys fs.FS, name string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
