package main

import (
	"fmt"

	"github.com/muesli/termenv"
)

// printBanner outputs the startup banner for the server.
func printBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String(`                                  `).Foreground(p.Color("#34d399"))
	s2 := termenv.String(`  __ __ _ _ _  ___ _ __ _  _      `).Foreground(p.Color("#10b981"))
	s3 := termenv.String(" / _/ _` | ' \\/ _ \\ '_ \\ || |  ").Foreground(p.Color("#059669"))
	s4 := termenv.String(` \__\__,_|_||_\___/ .__/\_, |    `).Foreground(p.Color("#047857"))
	s5 := termenv.String(`                  |_|   |__/      `).Foreground(p.Color("#065f46"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
