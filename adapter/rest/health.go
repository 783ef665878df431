package rest

import (
	"net/http"
)

type HealthResponse struct {
	Status string   `json:"status"`
	Stores []string `json:"stores"`
}

func (a *Adapter) healthHandler(w http.ResponseWriter, r *http.Request) {
	stores := a.storeNames
	if stores == nil {
		stores = []string{}
	}
	renderJSON(w, HealthResponse{Status: "ok", Stores: stores})
}
