package app

import "github.com/urfave/cli/v2"

// FlagOverrides returns the command line layer for config.Resolve: one entry
// per flag the user actually set, keyed by its config key.
func FlagOverrides(cctx *cli.Context, keys map[string]string) map[string]any {
	out := make(map[string]any, len(keys))
	for flag, key := range keys {
		if cctx.IsSet(flag) {
			out[key] = cctx.Value(flag)
		}
	}
	return out
}
