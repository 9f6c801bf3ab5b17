/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package match

import (
	"strconv"
)

// Args renders cfg as cutechess-cli arguments:
//
//	-engine cmd=E1 [name=N1] -engine cmd=E2 [name=N2]
//	-each st=T timemargin=M proto=P
//	-rounds R -repeat N
//	-openings file=F format=X order=O
//	-concurrency C -pgnout PGN
func Args(cfg TournamentConfig) []string {
	args := make([]string, 0, 24)

	for _, e := range cfg.Engines() {
		args = append(args, "-engine", "cmd="+e.Cmd)
		if e.Name != "" {
			args = append(args, "name="+e.Name)
		}
	}

	args = append(args, "-each",
		"st="+formatSeconds(cfg.TimePerGame),
		"timemargin="+strconv.Itoa(cfg.TimeMarginMs),
		"proto="+cfg.Protocol)

	args = append(args,
		"-rounds", strconv.Itoa(cfg.Rounds),
		"-repeat", strconv.Itoa(cfg.Repeat))

	args = append(args, "-openings",
		"file="+cfg.Openings.File,
		"format="+string(cfg.Openings.Format),
		"order="+string(cfg.Openings.Order))

	args = append(args,
		"-concurrency", strconv.Itoa(cfg.Concurrency),
		"-pgnout", cfg.PGNOut)

	return args
}

// shortest representation that round-trips, e.g. 0.5 -> "0.5", 10 -> "10"
func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
