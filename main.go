// The main package for the harvester executable.
package main

import "github.com/waja/dagsorden-harvester/cmd"

func main() {
	cmd.Execute()
}
