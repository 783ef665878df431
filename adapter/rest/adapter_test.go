package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbot/advisorbot"
)

type fakeAdvisorBot struct {
	record    *advisorbot.AnswerRecord
	answerErr error

	feedbackQuestion string
	feedbackAnswer   string
	feedbackHelpful  bool
	feedbackErr      error
}

func (f *fakeAdvisorBot) Answer(ctx context.Context, question string, topics ...string) (*advisorbot.AnswerRecord, error) {
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	return f.record, nil
}

func (f *fakeAdvisorBot) SaveFeedback(ctx context.Context, question, answer string, helpful bool) error {
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	f.feedbackQuestion = question
	f.feedbackAnswer = answer
	f.feedbackHelpful = helpful
	return nil
}

func newTestServer(bot AdvisorBot, options ...Option) *httptest.Server {
	mux := http.NewServeMux()
	New(bot, options...).RegisterHandlers(mux)
	return httptest.NewServer(mux)
}

func TestAnswerHandler(t *testing.T) {
	t.Parallel()

	record := &advisorbot.AnswerRecord{
		Outcome: advisorbot.OutcomeAnswered,
		Answer:  "The pass mark is 50% [1].",
		Sources: []advisorbot.Source{
			{Title: "Masters Regulations", URL: "https://example.edu/regulations", Score: 0.91, Content: "The pass mark is 50%."},
		},
		Timings: advisorbot.Timings{
			advisorbot.StageRetrieval:  0.12,
			advisorbot.StageRerank:     0.05,
			advisorbot.StageGeneration: 1.4,
			advisorbot.StageTotal:      1.57,
		},
	}

	server := newTestServer(&fakeAdvisorBot{record: record})
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/answers", "application/json",
		strings.NewReader(`{"question": "What is the pass mark?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var actual advisorbot.AnswerRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actual))
	assert.Equal(t, *record, actual)
}

func TestAnswerHandlerValidation(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeAdvisorBot{})
	defer server.Close()

	tests := []struct {
		title       string
		contentType string
		body        string
	}{
		{"Missing question", "application/json", `{}`},
		{"Blank question", "application/json", `{"question": "   "}`},
		{"Invalid JSON", "application/json", `{`},
		{"Wrong content type", "text/plain", `{"question": "What is the pass mark?"}`},
	}

	for i, tst := range tests {
		t.Run(fmt.Sprintf("#%v_%v", i, tst.title), func(t *testing.T) {
			resp, err := http.Post(server.URL+"/v1/answers", tst.contentType, strings.NewReader(tst.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAnswerHandlerError(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeAdvisorBot{answerErr: fmt.Errorf("model unavailable")})
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/answers", "application/json",
		strings.NewReader(`{"question": "What is the pass mark?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestFeedbackHandler(t *testing.T) {
	t.Parallel()

	bot := &fakeAdvisorBot{}
	server := newTestServer(bot)
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/feedback", "application/json",
		strings.NewReader(`{"question": "What is the pass mark?", "answer": "50% [1]", "helpful": true}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, "What is the pass mark?", bot.feedbackQuestion)
	assert.Equal(t, "50% [1]", bot.feedbackAnswer)
	assert.True(t, bot.feedbackHelpful)
}

func TestExamplesHandler(t *testing.T) {
	t.Parallel()

	questions := []string{
		"What is the pass mark for the dissertation?",
		"Can tuition fees be paid in installments?",
	}

	server := newTestServer(&fakeAdvisorBot{}, WithExampleQuestions(questions))
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/examples")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var actual ExamplesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actual))
	assert.Equal(t, questions, actual.Questions)
}

func TestExamplesHandlerEmpty(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeAdvisorBot{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/examples")
	require.NoError(t, err)
	defer resp.Body.Close()

	var actual ExamplesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actual))
	assert.Equal(t, []string{}, actual.Questions)
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeAdvisorBot{}, WithStoreNames([]string{"course", "faq"}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var actual HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actual))
	assert.Equal(t, "ok", actual.Status)
	assert.Equal(t, []string{"course", "faq"}, actual.Stores)
}

func TestHealthHandlerNoStores(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeAdvisorBot{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var actual HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actual))
	assert.Equal(t, "ok", actual.Status)
	assert.Equal(t, []string{}, actual.Stores)
}
