// Command startrc loads a directory of startup configuration fragments in
// a deterministic, platform-aware order.
package main

import "github.com/leapstack-labs/startrc/internal/cli"

func main() {
	cli.Execute()
}
