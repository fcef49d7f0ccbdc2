// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"

	"github.com/osh-cli/osh/internal/launch"
	"github.com/osh-cli/osh/pkg/platform"
)

// Runner runs a helper program to completion. launch.System implements it.
type Runner interface {
	Run(ctx context.Context, p launch.Process, s launch.Streams) error
}

// venvCommand is "<python> -m venv <dir>".
func venvCommand(python, dir string) launch.Process {
	return launch.Process{Path: python, Args: []string{"-m", "venv", dir}}
}

// pipInstallCommand installs sources in editable mode with the venv's pip.
func pipInstallCommand(pip, sources string) launch.Process {
	return launch.Process{Path: pip, Args: []string{"install", "-e", sources}}
}

func pipName() string {
	return platform.ExecutableName("pip")
}
