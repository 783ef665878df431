package rest

import (
	"net/http"
)

type ExamplesResponse struct {
	Questions []string `json:"questions"`
}

// examplesHandler returns curated starter questions for client UIs.
func (a *Adapter) examplesHandler(w http.ResponseWriter, r *http.Request) {
	questions := a.exampleQuestions
	if questions == nil {
		questions = []string{}
	}
	renderJSON(w, ExamplesResponse{Questions: questions})
}
