package chathttp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/adapter/chathttp"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/usecase"
)

type stubAskUsecase struct {
	output *usecase.AskOutput
	err    error
	input  usecase.AskInput
}

func (s *stubAskUsecase) Execute(ctx context.Context, input usecase.AskInput) (*usecase.AskOutput, error) {
	s.input = input
	return s.output, s.err
}

type stubInvalidator struct {
	clinics  []string
	patients []string
}

func (s *stubInvalidator) InvalidateClinic(id string)  { s.clinics = append(s.clinics, id) }
func (s *stubInvalidator) InvalidatePatient(id string) { s.patients = append(s.patients, id) }

func newTestServer(ask *stubAskUsecase, inv *stubInvalidator) *echo.Echo {
	e := echo.New()
	chathttp.NewHandler(ask, inv).Register(e)
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAsk_OK(t *testing.T) {
	ask := &stubAskUsecase{output: &usecase.AskOutput{
		RequestID: "r-1",
		Blocks: []usecase.ContentBlock{
			{Type: usecase.BlockText, Content: "Cataracts cloud the lens."},
		},
		PlainText:   "Cataracts cloud the lens.",
		Suggestions: []string{"What causes them?"},
	}}
	e := newTestServer(ask, &stubInvalidator{})

	rec := postJSON(e, "/v1/chat/ask", `{"question": "What is a cataract?", "patient_id": "p-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "What is a cataract?", ask.input.Question)
	assert.Equal(t, "p-1", ask.input.PatientID)

	var resp usecase.AskOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "r-1", resp.RequestID)
	assert.Len(t, resp.Blocks, 1)
}

func TestAsk_MissingQuestion(t *testing.T) {
	e := newTestServer(&stubAskUsecase{}, &stubInvalidator{})

	rec := postJSON(e, "/v1/chat/ask", `{"clinic_id": "c-1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_WhitespaceQuestionRejected(t *testing.T) {
	ask := &stubAskUsecase{}
	e := newTestServer(ask, &stubInvalidator{})

	rec := postJSON(e, "/v1/chat/ask", `{"question": "   \t  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ask.input.Question, "usecase is never reached")
}

func TestAsk_NotFound(t *testing.T) {
	ask := &stubAskUsecase{err: fmt.Errorf("patient p-404: %w", domain.ErrNotFound)}
	e := newTestServer(ask, &stubInvalidator{})

	rec := postJSON(e, "/v1/chat/ask", `{"question": "my records", "patient_id": "p-404"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAsk_InternalError(t *testing.T) {
	ask := &stubAskUsecase{err: fmt.Errorf("boom")}
	e := newTestServer(ask, &stubInvalidator{})

	rec := postJSON(e, "/v1/chat/ask", `{"question": "q"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom", "internal details stay out of the response")
}

func TestInvalidateCache(t *testing.T) {
	inv := &stubInvalidator{}
	e := newTestServer(&stubAskUsecase{}, inv)

	rec := postJSON(e, "/internal/cache/invalidate", `{"clinic_id": "c-1", "patient_id": "p-2"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"c-1"}, inv.clinics)
	assert.Equal(t, []string{"p-2"}, inv.patients)
}

func TestInvalidateCache_RequiresID(t *testing.T) {
	e := newTestServer(&stubAskUsecase{}, &stubInvalidator{})

	rec := postJSON(e, "/internal/cache/invalidate", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
