// Command fuzzygammon-server runs the fuzzygammon REST and WebSocket API
// server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/yourusername/fuzzygammon/pkg/api"
)

const version = "0.1.0"

func main() {
	// Command line flags
	host := flag.String("host", "localhost", "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", 8080, "Port to listen on")
	depth := flag.Int("depth", 2, "Default minimax search depth for AI moves")
	fastWorkers := flag.Int("fast-workers", 100, "Max concurrent rules operations")
	slowWorkers := flag.Int("slow-workers", 4, "Max concurrent AI searches")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("fuzzygammon API Server v%s\n", version)
		os.Exit(0)
	}

	log.Printf("fuzzygammon API Server v%s", version)

	config := api.ServerConfig{
		Host:           *host,
		Port:           *port,
		ReadTimeout:    *readTimeout,
		WriteTimeout:   *writeTimeout,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: *fastWorkers,
		MaxSlowWorkers: *slowWorkers,
		SearchDepth:    *depth,
	}

	server := api.NewServer(config, version)

	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
