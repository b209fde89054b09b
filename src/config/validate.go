package config

import "fmt"

// Validate checks structural invariants of a loaded Config.
// Returns warnings and a hard error if the config is structurally invalid.
// Config package never prints — warnings are returned for the CLI to format.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	if cfg.Data.Dir == "" {
		errs = append(errs, "data.dir: must not be empty")
	}
	if cfg.Data.TargetsFile == "" {
		errs = append(errs, "data.targets_file: must not be empty")
	}
	if cfg.Server.ListenAddr == "" {
		errs = append(errs, "server.listen_addr: must not be empty")
	}
	if cfg.Supervisor.RefreshIntervalMinutes < 0 {
		errs = append(errs, "supervisor.refresh_interval_minutes: must not be negative")
	}
	if cfg.Search.ResultCap <= 0 {
		warnings = append(warnings, "search.result_cap: non-positive, falling back to 10")
		cfg.Search.ResultCap = 10
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", joinErrs(errs))
	}
	return warnings, nil
}

func joinErrs(errs []string) string {
	s := errs[0]
	for _, e := range errs[1:] {
		s += "; " + e
	}
	return s
}
