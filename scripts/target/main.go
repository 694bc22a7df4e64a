// Target is a test HTTP server for trying the monitor by hand. It serves
// endpoints that answer, stall, redirect or drop the connection.
//
// Usage:
//
//	go run ./scripts/target --port 8081
//	go run ./cmd http://localhost:8081/ok http://localhost:8081/flaky --retries 2
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/pflag"
)

func main() {
	port := pflag.Int("port", 8081, "port to listen on")
	failEvery := pflag.Int("fail-every", 2, "drop every nth request to /flaky")
	pflag.Parse()

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting target on %s", addr)
	if err := http.ListenAndServe(addr, newTargetHandler(*failEvery)); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
