// Package flagx lets several independent flag sets share one command line:
// each parser filters the arguments down to the flags it owns before parsing.
package flagx

import (
	"flag"
	"strings"
)

// Set lists the flags a parser owns. The value reports whether the flag
// takes a separate argument ("-a host:port") or is a boolean switch ("-trust").
type Set map[string]bool

// FilterArgs returns the subset of args that belongs to allowed.
//
// Supported forms:
//
//	-a host:port     flag and value as separate arguments
//	--config=x.json  flag and value joined with '='
//	-trust           boolean switch (never consumes the next argument)
//
// A value-taking flag only consumes the next argument when it does not look
// like another flag. The result is never nil.
func FilterArgs(args []string, allowed Set) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		takesValue, ok := allowed[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if takesValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config file path given via -c or -config.
// Other arguments are ignored; an empty string means no file was requested.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, Set{"-c": true, "-config": true}))

	return path
}
