package main

import "github.com/ValentinKolb/tprobe/cmd"

func main() {
	cmd.Execute()
}
