package config

import (
	"flag"
	"os"
	"time"

	"github.com/omnisent/omnisent/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend API (default from Config)
//	-d string   path to the local credential database
//	-i int      session revalidation interval in seconds
//	-u int      maximum concurrent uploads
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local credential database")
	revalidateSeconds := fs.Int("i", int(cfg.RevalidateInterval.Seconds()), "session revalidation interval (in seconds)")
	fs.Int64Var(&cfg.UploadConcurrency, "u", cfg.UploadConcurrency, "maximum concurrent uploads")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RevalidateInterval = time.Duration(*revalidateSeconds) * time.Second
}
