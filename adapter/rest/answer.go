package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type AnswerRequest struct {
	Question string   `json:"question"`
	Topics   []string `json:"topics,omitempty"`
}

func (a *Adapter) answerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), answerTimeout)
	defer cancel()

	apiRequest := AnswerRequest{}
	if err := readRequestJSON(r, &apiRequest); err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	if strings.TrimSpace(apiRequest.Question) == "" {
		renderJSONError(w, http.StatusBadRequest, fmt.Errorf("missing question"))
		return
	}

	record, err := a.advisorBot.Answer(ctx, apiRequest.Question, apiRequest.Topics...)
	if err != nil {
		a.logger.With("error", err).Error("Error generating answer")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error generating answer: %w", err))
		return
	}

	renderJSON(w, record)
}
