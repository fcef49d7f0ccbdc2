// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
	"mvdan.cc/sh/v3/interp"

	"github.com/osh-cli/osh/internal/odoorpc"
)

// readAlias is what "read MODEL IDS" is rewritten to, since read is also a
// shell builtin.
const readAlias = "osh-read"

// usageStatus is the exit status of a command called with bad arguments.
const usageStatus = 2

type (
	builtin struct {
		usage   string
		summary string
		run     func(ctx context.Context, s *Session, out io.Writer, args []string) error
	}

	usageError struct{ usage string }
)

func (e *usageError) Error() string { return "usage: " + e.usage }

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"version": {
			usage:   "version",
			summary: "Show the server version",
			run:     runVersion,
		},
		"login": {
			usage:   "login DB USER PASSWORD",
			summary: "Authenticate against a database",
			run:     runLogin,
		},
		"whoami": {
			usage:   "whoami",
			summary: "Show the logged in user",
			run:     runWhoami,
		},
		"dbs": {
			usage:   "dbs",
			summary: "List the databases on the server",
			run:     runDatabases,
		},
		"call": {
			usage:   "call MODEL METHOD [ARGS_JSON [KWARGS_JSON]]",
			summary: "Call any model method through execute_kw",
			run:     runCall,
		},
		"search": {
			usage:   "search MODEL [DOMAIN_JSON]",
			summary: "Print the ids of matching records",
			run:     runSearch,
		},
		"count": {
			usage:   "count MODEL [DOMAIN_JSON]",
			summary: "Count matching records",
			run:     runCount,
		},
		"read": {
			usage:   "read MODEL IDS [FIELDS]",
			summary: "Read records by id; IDS and FIELDS are comma separated",
			run:     runRead,
		},
		"search_read": {
			usage:   "search_read MODEL [DOMAIN_JSON [FIELDS]]",
			summary: "Search and read matching records",
			run:     runSearchRead,
		},
		"help": {
			usage:   "help [COMMAND]",
			summary: "List commands or describe one",
			run:     runHelp,
		},
	}
}

// rewriteCall routes "read res.partner 1,2" to the Odoo command. A model
// name contains a dot, which no shell variable name can.
func rewriteCall(_ context.Context, args []string) ([]string, error) {
	if len(args) >= 3 && args[0] == "read" && strings.Contains(args[1], ".") && !strings.HasPrefix(args[1], "-") {
		return append([]string{readAlias}, args[1:]...), nil
	}
	return args, nil
}

func (s *Session) execHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		name := args[0]
		if name == readAlias {
			name = "read"
		}
		b, ok := builtins[name]
		if !ok {
			return next(ctx, args)
		}

		hc := interp.HandlerCtx(ctx)
		err := b.run(ctx, s, hc.Stdout, args[1:])
		if err == nil {
			return nil
		}
		s.log.Debug("command failed", "command", name, "error", err)
		fmt.Fprintf(hc.Stderr, "%s: %v\n", name, err)
		var ue *usageError
		if errors.As(err, &ue) {
			return interp.ExitStatus(usageStatus)
		}
		return interp.ExitStatus(1)
	}
}

func runVersion(ctx context.Context, s *Session, out io.Writer, args []string) error {
	if len(args) != 0 {
		return &usageError{builtins["version"].usage}
	}
	v, err := s.client.Version(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, v)
}

func runLogin(ctx context.Context, s *Session, out io.Writer, args []string) error {
	if len(args) != 3 {
		return &usageError{builtins["login"].usage}
	}
	sess, err := s.client.Login(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Logged in to %s as %s (uid %d)\n", sess.Database, sess.Username, sess.UID)
	return nil
}

func runWhoami(_ context.Context, s *Session, out io.Writer, args []string) error {
	if len(args) != 0 {
		return &usageError{builtins["whoami"].usage}
	}
	sess, ok := s.client.Session()
	if !ok {
		return odoorpc.ErrNotLoggedIn
	}
	fmt.Fprintf(out, "%s@%s (uid %d)\n", sess.Username, sess.Database, sess.UID)
	return nil
}

func runDatabases(ctx context.Context, s *Session, out io.Writer, args []string) error {
	if len(args) != 0 {
		return &usageError{builtins["dbs"].usage}
	}
	dbs, err := s.client.ListDatabases(ctx)
	if err != nil {
		return err
	}
	for _, db := range dbs {
		fmt.Fprintln(out, db)
	}
	return nil
}

func runCall(ctx context.Context, s *Session, out io.Writer, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return &usageError{builtins["call"].usage}
	}
	var (
		callArgs []any
		kwargs   map[string]any
	)
	if len(args) > 2 {
		if err := json.Unmarshal([]byte(args[2]), &callArgs); err != nil {
			return fmt.Errorf("ARGS_JSON must be a JSON array: %w", err)
		}
	}
	if len(args) > 3 {
		if err := json.Unmarshal([]byte(args[3]), &kwargs); err != nil {
			return fmt.Errorf("KWARGS_JSON must be a JSON object: %w", err)
		}
	}
	if callArgs == nil {
		callArgs = []any{}
	}
	raw, err := s.client.ExecuteKw(ctx, args[0], args[1], callArgs, kwargs)
	if err != nil {
		return err
	}
	return printJSON(out, raw)
}

func runSearch(ctx context.Context, s *Session, out io.Writer, args []string) error {
	model, domain, err := modelAndDomain(args, "search")
	if err != nil {
		return err
	}
	ids, err := s.client.Search(ctx, model, domain)
	if err != nil {
		return err
	}
	return printJSON(out, ids)
}

func runCount(ctx context.Context, s *Session, out io.Writer, args []string) error {
	model, domain, err := modelAndDomain(args, "count")
	if err != nil {
		return err
	}
	n, err := s.client.SearchCount(ctx, model, domain)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, n)
	return nil
}

func runRead(ctx context.Context, s *Session, out io.Writer, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return &usageError{builtins["read"].usage}
	}
	ids, err := parseIDs(args[1])
	if err != nil {
		return err
	}
	var fields []string
	if len(args) == 3 {
		fields = parseFields(args[2])
	}
	records, err := s.client.Read(ctx, args[0], ids, fields)
	if err != nil {
		return err
	}
	return printJSON(out, records)
}

func runSearchRead(ctx context.Context, s *Session, out io.Writer, args []string) error {
	if len(args) == 3 {
		model, domain, err := modelAndDomain(args[:2], "search_read")
		if err != nil {
			return err
		}
		records, err := s.client.SearchRead(ctx, model, domain, parseFields(args[2]))
		if err != nil {
			return err
		}
		return printJSON(out, records)
	}
	model, domain, err := modelAndDomain(args, "search_read")
	if err != nil {
		return err
	}
	records, err := s.client.SearchRead(ctx, model, domain, nil)
	if err != nil {
		return err
	}
	return printJSON(out, records)
}

func runHelp(_ context.Context, _ *Session, out io.Writer, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintln(out, "Odoo commands (everything else runs as a shell command):")
		for _, name := range commandNames() {
			fmt.Fprintf(out, "  %-12s %s\n", name, builtins[name].summary)
		}
		fmt.Fprintln(out, "\nVariables: $"+EnvURL+", $"+EnvDB+", $"+EnvUser+". Leave with exit, quit or Ctrl-D.")
		return nil
	case 1:
		if b, ok := builtins[args[0]]; ok {
			fmt.Fprintf(out, "usage: %s\n\n%s\n", b.usage, b.summary)
			return nil
		}
		if suggestions := suggest(args[0]); len(suggestions) > 0 {
			quoted := make([]string, len(suggestions))
			for i, name := range suggestions {
				quoted[i] = strconv.Quote(name)
			}
			return fmt.Errorf("unknown command %q, did you mean %s?", args[0], strings.Join(quoted, " or "))
		}
		return fmt.Errorf("unknown command %q", args[0])
	default:
		return &usageError{builtins["help"].usage}
	}
}

func commandNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// suggest returns up to three command names fuzzily matching topic.
func suggest(topic string) []string {
	matches := fuzzy.Find(topic, commandNames())
	out := make([]string, 0, 3)
	for _, m := range matches {
		if len(out) == 3 {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

func modelAndDomain(args []string, name string) (string, odoorpc.Domain, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", nil, &usageError{builtins[name].usage}
	}
	if len(args) == 1 {
		return args[0], nil, nil
	}
	var domain odoorpc.Domain
	if err := json.Unmarshal([]byte(args[1]), &domain); err != nil {
		return "", nil, fmt.Errorf("DOMAIN_JSON must be a JSON array: %w", err)
	}
	return args[0], domain, nil
}

// parseIDs accepts "1,2,3" or a JSON array.
func parseIDs(s string) ([]int, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "[") {
		var ids []int
		if err := json.Unmarshal([]byte(s), &ids); err != nil {
			return nil, fmt.Errorf("invalid IDS %q: %w", s, err)
		}
		return ids, nil
	}
	var ids []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids in %q", s)
	}
	return ids, nil
}

// parseFields accepts "name,email" or a JSON array.
func parseFields(s string) []string {
	var fields []string
	if json.Unmarshal([]byte(s), &fields) == nil {
		return fields
	}
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}
