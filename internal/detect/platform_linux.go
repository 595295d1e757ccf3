// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build linux

package detect

import (
	"context"
	"io/fs"
	"os"
)

var hostFS fs.FS = os.DirFS("/")

func platformProbe() Probe {
	return Probe{
		Name: "sysfs",
		Run: func(_ context.Context) (*CPUInfo, error) {
			return probeSysfs(hostFS)
		},
	}
}
