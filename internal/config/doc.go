// Package config holds the installer configuration and the logging hook
// shared by the rest of sfdxinstall.
//
// A Config is assembled from three sources, later ones winning:
//
//  1. Default() - the values this build was released with
//  2. an optional YAML file (see Load)
//  3. the environment (see ApplyEnv)
//
// The command line applies its own flags on top before calling Validate.
// Nothing in this package keeps global state; the resolved Config is passed
// explicitly to every component that needs it.
package config
