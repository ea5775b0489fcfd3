// Package mode turns a requested target into the concrete parameters of a
// build and run.
//
// Three targets are supported. App builds the server image and runs it
// detached with published ports, resource limits, a logging driver chosen
// for the host, and the first env file found. Test builds the test image
// with a substituted ignore file and runs the suite once with placeholder
// credentials. K8s only builds an image for a cluster to pull; it is never
// started locally and pushing it requires a registry namespace.
//
// A [Descriptor] is a plain value computed once from the project settings.
// Nothing in it is read back from the environment later.
package mode
