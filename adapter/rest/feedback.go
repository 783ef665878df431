package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type FeedbackRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Helpful  bool   `json:"helpful"`
}

type FeedbackResponse struct {
	Status string `json:"status"`
}

func (a *Adapter) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultTimeout)
	defer cancel()

	apiRequest := FeedbackRequest{}
	if err := readRequestJSON(r, &apiRequest); err != nil {
		renderJSONError(w, http.StatusBadRequest, err)
		return
	}

	if strings.TrimSpace(apiRequest.Question) == "" {
		renderJSONError(w, http.StatusBadRequest, fmt.Errorf("missing question"))
		return
	}

	if err := a.advisorBot.SaveFeedback(ctx, apiRequest.Question, apiRequest.Answer, apiRequest.Helpful); err != nil {
		a.logger.With("error", err).Error("Error saving feedback")
		renderJSONError(w, http.StatusInternalServerError, fmt.Errorf("error saving feedback: %w", err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	renderJSON(w, FeedbackResponse{Status: "recorded"})
}
