package main

import "flag"

// newFlagSet returns a flag.FlagSet that prints its own usage and returns
// flag.ErrHelp instead of calling os.Exit, so subcommand errors surface
// through main's normal error path.
func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}
