// SPDX-License-Identifier: MPL-2.0

// Package odoorpctest provides an in-process fake of the Odoo JSON-RPC
// endpoint for tests.
package odoorpctest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
)

type (
	// Server is a fake server. Records are keyed by model name and must carry
	// an integer "id" field.
	Server struct {
		*httptest.Server

		Version   map[string]any
		Databases []string
		// Users maps "db/login" to the password and uid to accept.
		Users   map[string]User
		Records map[string][]map[string]any

		mu    sync.Mutex
		calls []string
	}

	// User is an account known to the fake server.
	User struct {
		Password string
		UID      int
	}

	rpcRequest struct {
		ID     json.RawMessage `json:"id"`
		Params struct {
			Service string            `json:"service"`
			Method  string            `json:"method"`
			Args    []json.RawMessage `json:"args"`
		} `json:"params"`
	}
)

// NewServer starts a fake server with one database "demo" and the user
// admin/admin. It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Version: map[string]any{
			"server_version":      "17.0",
			"server_serie":        "17.0",
			"protocol_version":    1,
			"server_version_info": []any{17, 0, 0, "final", 0, ""},
		},
		Databases: []string{"demo"},
		Users:     map[string]User{"demo/admin": {Password: "admin", UID: 2}},
		Records: map[string][]map[string]any{
			"res.partner": {
				{"id": 1, "name": "My Company", "is_company": true},
				{"id": 3, "name": "Mitchell Admin", "is_company": false},
			},
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Calls returns "service.method" for every request received so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/jsonrpc" {
		http.NotFound(w, r)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, req.Params.Service+"."+req.Params.Method)
	s.mu.Unlock()

	result, rpcErr := s.dispatch(req)

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = map[string]any{
			"code":    200,
			"message": "Odoo Server Error",
			"data":    map[string]any{"name": rpcErr.name, "message": rpcErr.message, "debug": ""},
		}
	} else {
		resp["result"] = result
	}
	_ = json.NewEncoder(w).Encode(resp)
}

type fault struct{ name, message string }

func (s *Server) dispatch(req rpcRequest) (any, *fault) {
	p := req.Params
	switch p.Service + "." + p.Method {
	case "common.version":
		return s.Version, nil
	case "db.list":
		return s.Databases, nil
	case "common.login", "common.authenticate":
		var db, login, password string
		if !decodeArgs(p.Args, &db, &login, &password) {
			return nil, &fault{"builtins.TypeError", "login() takes 3 arguments"}
		}
		if u, ok := s.Users[db+"/"+login]; ok && u.Password == password {
			return u.UID, nil
		}
		return false, nil
	case "object.execute_kw":
		return s.executeKw(p.Args)
	default:
		return nil, &fault{"werkzeug.exceptions.NotFound", fmt.Sprintf("unknown method %s.%s", p.Service, p.Method)}
	}
}

func (s *Server) executeKw(args []json.RawMessage) (any, *fault) {
	if len(args) < 5 {
		return nil, &fault{"builtins.TypeError", "execute_kw() missing arguments"}
	}
	var db, password, model, method string
	var uid int
	if !decodeArgs(args[:5], &db, &uid, &password, &model, &method) {
		return nil, &fault{"builtins.TypeError", "bad execute_kw arguments"}
	}

	authorized := false
	for key, u := range s.Users {
		if u.UID == uid && u.Password == password && len(key) > len(db) && key[:len(db)+1] == db+"/" {
			authorized = true
		}
	}
	if !authorized {
		return nil, &fault{"odoo.exceptions.AccessDenied", "Access Denied"}
	}

	records, ok := s.Records[model]
	if !ok {
		return nil, &fault{"builtins.KeyError", fmt.Sprintf("'%s'", model)}
	}

	var positional []json.RawMessage
	if len(args) > 5 {
		_ = json.Unmarshal(args[5], &positional)
	}
	var kwargs struct {
		Fields []string `json:"fields"`
	}
	if len(args) > 6 {
		_ = json.Unmarshal(args[6], &kwargs)
	}

	switch method {
	case "search", "search_count", "search_read":
		var domain [][]any
		if len(positional) > 0 {
			_ = json.Unmarshal(positional[0], &domain)
		}
		matched := filter(records, domain)
		switch method {
		case "search":
			return ids(matched), nil
		case "search_count":
			return len(matched), nil
		default:
			return project(matched, kwargs.Fields), nil
		}
	case "read":
		var wanted []int
		if len(positional) > 0 {
			_ = json.Unmarshal(positional[0], &wanted)
		}
		var out []map[string]any
		for _, rec := range records {
			if slices.Contains(wanted, idOf(rec)) {
				out = append(out, rec)
			}
		}
		return project(out, kwargs.Fields), nil
	default:
		return nil, &fault{"builtins.AttributeError", fmt.Sprintf("type object '%s' has no attribute '%s'", model, method)}
	}
}

func decodeArgs(raw []json.RawMessage, out ...any) bool {
	if len(raw) < len(out) {
		return false
	}
	for i, o := range out {
		if err := json.Unmarshal(raw[i], o); err != nil {
			return false
		}
	}
	return true
}

// filter supports leaves of the form [field, "=", value] joined by AND.
func filter(records []map[string]any, domain [][]any) []map[string]any {
	var out []map[string]any
	for _, rec := range records {
		keep := true
		for _, leaf := range domain {
			if len(leaf) != 3 || leaf[1] != "=" {
				continue
			}
			field, _ := leaf[0].(string)
			if fmt.Sprint(rec[field]) != fmt.Sprint(leaf[2]) {
				keep = false
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}

func project(records []map[string]any, fields []string) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if len(fields) == 0 {
			out = append(out, rec)
			continue
		}
		row := map[string]any{"id": rec["id"]}
		for _, f := range fields {
			row[f] = rec[f]
		}
		out = append(out, row)
	}
	return out
}

func ids(records []map[string]any) []int {
	out := make([]int, 0, len(records))
	for _, rec := range records {
		out = append(out, idOf(rec))
	}
	return out
}

func idOf(rec map[string]any) int {
	switch v := rec["id"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
