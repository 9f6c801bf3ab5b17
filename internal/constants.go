/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import "time"

const (
	UserAgent        = "cutematch/0.3.0 (+https://github.com/mikeb26/cutematch)"
	DefaultTool      = "cutechess-cli"
	DefaultEngineCmd = "../target/release/kittycat"

	// opening books rarely change once published
	BookCacheTTL = 30 * 24 * time.Hour
)
