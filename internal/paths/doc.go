// Provides platform-appropriate locations for cherryctl's own files.
//
// User-level configuration follows XDG conventions on Linux and the native
// conventions on macOS and Windows. Project-level files (the build context,
// the ignore manifests, the project config) are resolved relative to the
// project directory passed on the command line and never live here.
package paths
