/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

import "github.com/allbin/ch55x-tools/cmd"

func main() {
	cmd.Execute()
}
