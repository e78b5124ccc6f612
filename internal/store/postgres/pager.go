// Copyright 2026 The Keygate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pager computes prev/next markers over one filtered id set. Repositories
// hand it a query selecting the candidate ids as a column named id; the
// marker arithmetic is then shared by every collection.
//
// The contract: a page holds the first limit ids sorting strictly below
// the marker in descending order (an empty marker starts at the top).
// next is the last id of the current page when rows follow it; prev is
// the marker that re-fetches the page just above, empty when that page
// is the first.
type pager struct {
	pool *pgxpool.Pool

	// ids selects the candidate ids; filter placeholders are $1..$n
	// matching args. Ordering is applied by the pager itself.
	ids  string
	args []any
}

func (p pager) markers(ctx context.Context, marker string, limit int) (prev, next string, err error) {
	n := len(p.args)

	// Last id of the current window.
	windowSQL := fmt.Sprintf(
		"SELECT id FROM (%s) w WHERE ($%d = '' OR id < $%d) ORDER BY id DESC LIMIT $%d",
		p.ids, n+1, n+1, n+2)
	rows, err := p.pool.Query(ctx, windowSQL, append(p.args[:n:n], marker, limit)...)
	if err != nil {
		return "", "", fmt.Errorf("failed to query page window: %w", err)
	}
	var lastID string
	for rows.Next() {
		if err := rows.Scan(&lastID); err != nil {
			rows.Close()
			return "", "", fmt.Errorf("failed to scan page window: %w", err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", "", fmt.Errorf("failed to read page window: %w", err)
	}

	if lastID != "" {
		moreSQL := fmt.Sprintf(
			"SELECT EXISTS (SELECT 1 FROM (%s) w WHERE id < $%d)", p.ids, n+1)
		var more bool
		if err := p.pool.QueryRow(ctx, moreSQL, append(p.args[:n:n], lastID)...).Scan(&more); err != nil {
			return "", "", fmt.Errorf("failed to probe next page: %w", err)
		}
		if more {
			next = lastID
		}
	}

	if marker == "" {
		return "", next, nil
	}

	// Walking up from the marker in ascending order, the id limit slots
	// above it re-fetches the previous window. Fewer than that means the
	// previous window is the first page, which an empty marker selects.
	prevSQL := fmt.Sprintf(
		"SELECT id FROM (%s) w WHERE id >= $%d ORDER BY id ASC OFFSET $%d LIMIT 1",
		p.ids, n+1, n+2)
	err = p.pool.QueryRow(ctx, prevSQL, append(p.args[:n:n], marker, limit)...).Scan(&prev)
	if err == pgx.ErrNoRows {
		return "", next, nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to probe previous page: %w", err)
	}
	return prev, next, nil
}
