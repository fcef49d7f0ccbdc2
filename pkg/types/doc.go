// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared between osh packages.
package types
