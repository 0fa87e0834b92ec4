/*
Logging library for pulsar-diag.

Logging levels

0: also the same as not using V() log progress of the run, one line per collector and per recorded failure.

1: per unit progress within a collector. A log such as "collecting logs" with the unit name belongs here.

2: Everything else goes here, including every command run against a unit.

Do not log errors in functions that return an error. Instead, return the error and let the caller log it.
*/
package logger

import (
	"flag"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

var lock sync.Mutex

// InitKlogFlags initializes klog flags and adds them to the cobra command.
func InitKlogFlags(flags *pflag.FlagSet) {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)

	klogFlags.VisitAll(func(f *flag.Flag) {
		// only -v is exposed
		if f.Name == "v" {
			flags.AddGoFlag(f)
		}
	})
}

// InitKlog sets the klog verbosity without a command line. Tests use it to print instrumented logs.
func InitKlog(verbosity int) {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)

	klogFlags.VisitAll(func(f *flag.Flag) {
		if f.Name == "v" {
			f.Value.Set(fmt.Sprintf("%d", verbosity))
		}
	})
}

// SetupLogger sets up klog logger based on viper configuration.
func SetupLogger(v *viper.Viper) {
	SetQuiet(v.GetBool("quiet"))
}

// SetQuiet enables or disables klog logger.
func SetQuiet(quiet bool) {
	lock.Lock()
	defer lock.Unlock()

	if quiet {
		klog.SetLogger(logr.Discard())
	} else {
		// Restore the default logger
		klog.ClearLogger()
	}
}

