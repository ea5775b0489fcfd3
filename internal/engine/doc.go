// Package engine drives a container engine through its command-line
// interface.
//
// An [Engine] wraps a [command.Runner] and knows the argument layout of the
// engine verbs the deployment needs: build, tag, push, run, stop, rm and
// inspect. Docker and Podman accept the same layout. Every command runs in
// the project directory, so relative dockerfile and context paths resolve
// the same way they do for an operator typing the commands by hand.
//
// Stop and Remove are best-effort: a container that does not exist is not
// an error. The remaining verbs fail on a non-zero exit.
//
// Example usage:
//
//	eng := engine.New(command.New(false), "docker", "/src/server")
//
//	if err := eng.Build(ctx, engine.BuildSpec{
//	    Tag:        "app:latest",
//	    Dockerfile: "Dockerfile",
//	    Context:    ".",
//	}); err != nil {
//	    return err
//	}
//
//	if err := eng.Run(ctx, "app:latest", []string{"--rm"}, nil); err != nil {
//	    return err
//	}
package engine
