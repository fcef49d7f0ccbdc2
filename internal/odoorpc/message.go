// SPDX-License-Identifier: MPL-2.0

package odoorpc

import (
	"encoding/json"
	"fmt"
)

const jsonrpcVersion = "2.0"

type (
	// request is a JSON-RPC 2.0 "call" envelope.
	request struct {
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
		Params  params `json:"params"`
		ID      int64  `json:"id"`
	}

	params struct {
		Service string `json:"service"`
		Method  string `json:"method"`
		Args    []any  `json:"args"`
	}

	response struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      int64           `json:"id"`
		Result  json.RawMessage `json:"result,omitempty"`
		Error   *ServerError    `json:"error,omitempty"`
	}

	// ServerError is the error object returned by the server.
	ServerError struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    ServerErrorData `json:"data"`
	}

	// ServerErrorData carries the Python exception raised on the server.
	ServerErrorData struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		Debug   string `json:"debug"`
	}

	// VersionInfo is the result of common.version.
	VersionInfo struct {
		ServerVersion     string `json:"server_version"`
		ServerSerie       string `json:"server_serie"`
		ProtocolVersion   int    `json:"protocol_version"`
		ServerVersionInfo []any  `json:"server_version_info"`
	}
)

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Data.Message != "" {
		if e.Data.Name != "" {
			return fmt.Sprintf("%s: %s", e.Data.Name, e.Data.Message)
		}
		return e.Data.Message
	}
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}
