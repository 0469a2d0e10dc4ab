// The main package for the jobscraper executable.
package main

import (
	"github.com/razor303Jc/Job-search-sub002/cmd"
)

func main() {
	cmd.Execute()
}
