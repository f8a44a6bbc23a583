// clarinet-probe -- diagnostic companion for the clarinet socket library.
package main

import "github.com/nlebedenco/clarinet-go/cmd/clarinet-probe/commands"

func main() {
	commands.Execute()
}
