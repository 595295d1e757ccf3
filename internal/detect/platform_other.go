// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !linux && !darwin

package detect

import (
	"context"
	"errors"
)

func platformProbe() Probe {
	return Probe{
		Name: "platform",
		Run: func(_ context.Context) (*CPUInfo, error) {
			return nil, errors.ErrUnsupported
		},
	}
}
