// Entry point of the API server.
package main

import (
	"errors"
	"log"
	"net/http"

	"jobpath-backend/internal/server"
)

func main() {

	srv := server.NewServer()

	log.Printf("Server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server stopped unexpectedly: %v", err)
	}
}
