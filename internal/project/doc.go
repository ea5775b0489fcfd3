// Package project holds the deployment settings of the CherryRecorder
// server: image references, dockerfiles, ignore-file locations, the port
// table, resource limits, logging drivers, env-file candidates, and the
// health endpoint.
//
// A [Config] starts from [Default], is overlaid by an optional YAML file
// and a few environment variables, validated once, and is then treated as
// read-only for the rest of the process.
//
// Example cherryctl.yaml:
//
//	engine: podman
//	resources:
//	  memory: 2GiB
//	  cpus: "2"
//	env_files: [.env.production, .env]
package project
