package main

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const maxDelay = time.Minute

// newTargetHandler serves the test endpoints. Connections are never kept
// alive, so a dropped connection always reaches the client as an error.
func newTargetHandler(failEvery int) http.Handler {
	var flakyHits atomic.Int64

	mux := http.NewServeMux()

	mux.HandleFunc("GET /ok", func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK)
	})

	// /status/503 answers with that status.
	mux.HandleFunc("GET /status/{code}", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PathValue("code"))
		if err != nil || code < 100 || code > 599 {
			http.Error(w, "invalid status code", http.StatusBadRequest)
			return
		}
		respond(w, r, code)
	})

	// /slow?delay=2s waits before answering.
	mux.HandleFunc("GET /slow", func(w http.ResponseWriter, r *http.Request) {
		delay, err := time.ParseDuration(r.URL.Query().Get("delay"))
		if err != nil || delay < 0 || delay > maxDelay {
			delay = 2 * time.Second
		}

		select {
		case <-time.After(delay):
			respond(w, r, http.StatusOK)
		case <-r.Context().Done():
		}
	})

	// /redirect/3 redirects three times before landing on /ok.
	mux.HandleFunc("GET /redirect/{n}", func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(r.PathValue("n"))
		if err != nil || n < 0 {
			http.Error(w, "invalid redirect count", http.StatusBadRequest)
			return
		}
		if n == 0 {
			http.Redirect(w, r, "/ok", http.StatusFound)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/redirect/%d", n-1), http.StatusFound)
	})

	mux.HandleFunc("GET /drop", func(w http.ResponseWriter, r *http.Request) {
		drop(w)
	})

	mux.HandleFunc("GET /flaky", func(w http.ResponseWriter, r *http.Request) {
		if failEvery > 0 && flakyHits.Add(1)%int64(failEvery) == 0 {
			drop(w)
			return
		}
		respond(w, r, http.StatusOK)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		mux.ServeHTTP(w, r)
	})
}

func respond(w http.ResponseWriter, r *http.Request, code int) {
	requestID := uuid.NewString()
	log.Printf("request: id=%s path=%s from=%s status=%d", requestID, r.URL.Path, r.RemoteAddr, code)

	w.Header().Set("X-Request-Id", requestID)
	w.WriteHeader(code)
	w.Write([]byte(http.StatusText(code)))
}

// drop closes the connection without a response, which the monitor sees as
// a transport failure.
func drop(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "cannot drop connection", http.StatusInternalServerError)
		return
	}

	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	conn.Close()
}
