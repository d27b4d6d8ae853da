// Command qwery is the terminal client for the Qwery data agent.
package main

import (
	"os"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
