// Command canvas serves and manages saved views over business canvas data.
package main

import "github.com/mesh-intelligence/canvasboard/internal/cli"

func main() {
	cli.Execute()
}
