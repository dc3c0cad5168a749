package config

import (
	"flag"
)

// parses CLI flags for the server command
func ParseServerFlags(args []string) Flags {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	initSchema := fs.Bool("init-schema", false, "create the ai_usage table before serving (postgres store only)")
	port := fs.String("port", "", "port to listen on, overrides PORT")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{InitSchema: *initSchema, Port: *port}
}
