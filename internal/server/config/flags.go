package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/keywarden/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-r string   database driver ("pgx" or "sqlite")
//	-d string   database DSN
//	-p string   crypt provider name
//	-t int      session token validity, hours
//	-k string   resource kinds, comma-separated (e.g., "course,note")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The duration
// flag is accepted as an integer in hours and then converted to a
// time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-d", "-p", "-t", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "r", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.CryptProvider, "p", config.CryptProvider, "crypt provider")

	sessionTokenValidityDuration := fs.Int("t", int(config.SessionTokenValidityDuration.Hours()), "session_token_validity_duration (in hours)")
	resourceKinds := fs.String("k", strings.Join(config.ResourceKinds, ","), "resource kinds (comma-separated)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidityDuration) * time.Hour
	config.ResourceKinds = splitKinds(*resourceKinds)
}

// splitKinds turns the comma-separated flag value into a list, trimming
// whitespace and dropping empty entries.
func splitKinds(s string) []string {
	parts := strings.Split(s, ",")
	kinds := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kinds = append(kinds, p)
		}
	}
	return kinds
}
