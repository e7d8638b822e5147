package server

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// StartHealthCheckServer serves kubernetes-style liveness/readiness
// probes. Readiness checks that the Discord gateway is reachable, since
// match notifications are the one outbound dependency that has no
// degraded fallback.
func StartHealthCheckServer(port string) {
	r := mux.NewRouter()

	r.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("live"))
	})

	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		resp, err := http.Get("https://discordapp.com/api/v7/gateway")
		if err != nil {
			log.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(err.Error()))
			return
		}
		w.WriteHeader(resp.StatusCode)
		if resp.StatusCode == http.StatusOK {
			w.Write([]byte("ready"))
		} else {
			w.Write([]byte("unready"))
		}
	})

	http.ListenAndServe(":"+port, r)
}
