// SPDX-License-Identifier: MPL-2.0

package odoorpc

import (
	"context"
	"encoding/json"
	"fmt"
)

// Domain is a search domain such as [["is_company", "=", true]].
type Domain []any

// Search returns the ids of model records matching domain.
func (c *Client) Search(ctx context.Context, model string, domain Domain) ([]int, error) {
	raw, err := c.ExecuteKw(ctx, model, "search", []any{nonNilDomain(domain)}, nil)
	if err != nil {
		return nil, err
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode %s.search result: %w", model, err)
	}
	return ids, nil
}

// SearchCount returns the number of model records matching domain.
func (c *Client) SearchCount(ctx context.Context, model string, domain Domain) (int, error) {
	raw, err := c.ExecuteKw(ctx, model, "search_count", []any{nonNilDomain(domain)}, nil)
	if err != nil {
		return 0, err
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("decode %s.search_count result: %w", model, err)
	}
	return n, nil
}

// Read returns the given fields (all when empty) of the records with ids.
func (c *Client) Read(ctx context.Context, model string, ids []int, fields []string) ([]map[string]any, error) {
	raw, err := c.ExecuteKw(ctx, model, "read", []any{ids}, fieldsKw(fields))
	if err != nil {
		return nil, err
	}
	return decodeRecords(model, "read", raw)
}

// SearchRead combines Search and Read in one round trip.
func (c *Client) SearchRead(ctx context.Context, model string, domain Domain, fields []string) ([]map[string]any, error) {
	raw, err := c.ExecuteKw(ctx, model, "search_read", []any{nonNilDomain(domain)}, fieldsKw(fields))
	if err != nil {
		return nil, err
	}
	return decodeRecords(model, "search_read", raw)
}

func nonNilDomain(d Domain) Domain {
	if d == nil {
		return Domain{}
	}
	return d
}

func fieldsKw(fields []string) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	return map[string]any{"fields": fields}
}

func decodeRecords(model, method string, raw json.RawMessage) ([]map[string]any, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s.%s result: %w", model, method, err)
	}
	return records, nil
}
