// Command jg shows a frequency/time jamming plan as a live terminal chart.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
