// Package hotconf manages typed application configuration loaded from
// JSON, YAML, or TOML files, with optional hot-reload and validation.
//
// A Cell holds the current typed value behind a single reader/writer
// lock together with a monotonic version and a last-modified timestamp.
// Reload replaces all three atomically and broadcasts the new value to
// subscribers; a failed reload leaves the cell untouched. An optional
// background watcher drives reloads from filesystem change events,
// debounced so files are not read mid-write.
//
// Typical usage:
//
//	type AppConfig struct {
//		Host string `json:"host" yaml:"host" toml:"host"`
//		Port int    `json:"port" yaml:"port" toml:"port"`
//	}
//
//	cell, err := hotconf.NewBuilder[AppConfig]().
//		File("config.yaml").
//		HotReload(true).
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	defer cell.Close()
//
//	cfg := cell.Get()
//
//	sub := cell.Subscribe()
//	defer sub.Close()
//	for {
//		cfg, err := sub.Recv(ctx)
//		...
//	}
//
// Format backends and the watch capability can be excluded from a build
// with the hotconf_no_json, hotconf_no_yaml, hotconf_no_toml, and
// hotconf_no_watch tags; excluded capabilities surface as runtime
// errors, keeping the API surface uniform.
package hotconf
