// Parses flags and configures logging for cherryctl.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-C, --dir       Project directory.
//	    --config    Configuration file.
//
// Deploy is the default command, so "cherryctl --target test" and
// "cherryctl deploy --target test" are equivalent. Flags override
// build-time defaults set via linker flags. After parsing, the global logger
// is reconfigured to reflect the final level and verbosity before the
// command runs.
package cli
