package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	pidFile = "wanderlistd.pid"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = cmdInit()
	case "start":
		err = cmdStart()
	case "stop":
		err = cmdStop()
	case "status":
		err = cmdStatus()
	case "logs":
		err = cmdLogs()
	case "doctor":
		err = cmdDoctor()
	case "config":
		err = cmdConfig()
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("wanderlist %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Wanderlist - Bucket List & Flight Deals

Usage:
  wanderlist <command> [arguments]

Setup Commands:
  init            Initialize Wanderlist (first-time setup)
  doctor          Check configuration and daemon health
  config          Show current configuration

Daemon Commands:
  start           Start the Wanderlist daemon
  stop            Stop the Wanderlist daemon
  status          Show daemon status
  logs            View daemon logs

Other:
  help            Show this help message
  version         Show version information

Examples:
  wanderlist init     # Configure Amadeus credentials
  wanderlist start    # Start daemon
  wanderlist status   # Check daemon and storage health`)
}
