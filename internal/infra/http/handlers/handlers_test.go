package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/funnel"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/kanban"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

var testSession = entity.Session{UserID: "U1", Email: "ana@ligue.com", Role: "closer"}

func withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithSession(r.Context(), testSession)))
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

// --- mocks

type MockBoard struct{ mock.Mock }

func (m *MockBoard) Board(ctx context.Context, f entity.Funnel) (kanban.Board, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(kanban.Board), args.Error(1)
}

func (m *MockBoard) Move(ctx context.Context, in usecase.MoveLeadStageInput) (*usecase.MoveLeadStageOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.MoveLeadStageOutput)
	return out, args.Error(1)
}

func (m *MockBoard) Invalidate(ctx context.Context, f entity.Funnel) {
	m.Called(ctx, f)
}

type MockCreator struct{ mock.Mock }

func (m *MockCreator) Execute(ctx context.Context, s entity.Session, in usecase.CreateLeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, s, in)
	l, _ := args.Get(0).(*entity.Lead)
	return l, args.Error(1)
}

func (m *MockCreator) Capture(ctx context.Context, in usecase.CaptureLeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, in)
	l, _ := args.Get(0).(*entity.Lead)
	return l, args.Error(1)
}

type MockSurvey struct{ mock.Mock }

func (m *MockSurvey) Get(ctx context.Context, token string) (*entity.NPSInvitation, error) {
	args := m.Called(ctx, token)
	inv, _ := args.Get(0).(*entity.NPSInvitation)
	return inv, args.Error(1)
}

func (m *MockSurvey) Submit(ctx context.Context, in usecase.SubmitNPSInput) (*entity.NPSResponse, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(*entity.NPSResponse)
	return r, args.Error(1)
}

type stubJob struct {
	out *usecase.JobOutput
	err error
}

func (s stubJob) Execute(context.Context) (*usecase.JobOutput, error) { return s.out, s.err }

type stubNPSJob struct {
	out *usecase.NPSSendOutput
	err error
}

func (s stubNPSJob) Execute(context.Context) (*usecase.NPSSendOutput, error) { return s.out, s.err }

type stubLogin struct {
	tokens *usecase.AuthTokens
	err    error
}

func (s stubLogin) Execute(context.Context, usecase.LoginInput) (*usecase.AuthTokens, error) {
	return s.tokens, s.err
}

type stubAvatar struct {
	got []byte
	url string
	err error
}

func (s *stubAvatar) Execute(_ context.Context, _ entity.Session, data []byte) (string, error) {
	s.got = data
	return s.url, s.err
}

// --- leads

func leadRouter(creator LeadCreator, board Board) http.Handler {
	h := NewLeadHandler(creator, board, zerolog.Nop())
	r := chi.NewRouter()
	r.Post("/public/leads", h.CaptureLead)
	r.Group(func(r chi.Router) {
		r.Use(withSession)
		r.Post("/leads", h.Create)
		r.Get("/funnels/{funnel}/board", h.Board)
		r.Post("/leads/{id}/stage", h.MoveStage)
	})
	return r
}

func TestMoveStagePendingReturns202WithInputSpec(t *testing.T) {
	b := new(MockBoard)
	b.On("Move", mock.Anything, mock.MatchedBy(func(in usecase.MoveLeadStageInput) bool {
		return in.LeadID == "L1" && in.Target == entity.StageFechadoGanho && in.Session.UserID == "U1" && in.Confirmation == nil
	})).Return(&usecase.MoveLeadStageOutput{
		Outcome: usecase.OutcomePending,
		Pending: &funnel.InputSpec{},
	}, nil)

	rec := doJSON(t, leadRouter(new(MockCreator), b), http.MethodPost, "/leads/L1/stage", map[string]string{
		"funil": "closer", "etapa": "fechado_ganho",
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"resultado":"pendente"`)
	b.AssertExpectations(t)
}

func TestMoveStageAppliedReturns200(t *testing.T) {
	b := new(MockBoard)
	b.On("Move", mock.Anything, mock.Anything).Return(&usecase.MoveLeadStageOutput{
		Outcome: usecase.OutcomeApplied,
		Lead:    &entity.Lead{ID: "L1"},
	}, nil)

	rec := doJSON(t, leadRouter(new(MockCreator), b), http.MethodPost, "/leads/L1/stage", map[string]interface{}{
		"funil": "closer", "etapa": "perdido",
		"confirmacao": map[string]interface{}{"motivo_perda_id": "M1", "mover_para_frios": true},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	in := b.Calls[0].Arguments.Get(1).(usecase.MoveLeadStageInput)
	require.NotNil(t, in.Confirmation)
	assert.True(t, in.Confirmation.MoveToFrios)
	assert.Equal(t, "M1", *in.Confirmation.LossReasonID)
}

func TestMoveStageForbiddenReturns422(t *testing.T) {
	b := new(MockBoard)
	b.On("Move", mock.Anything, mock.Anything).Return(nil, &usecase.DomainError{
		Code: usecase.CodeForbiddenTransition, Message: "etapa terminal",
	})

	rec := doJSON(t, leadRouter(new(MockCreator), b), http.MethodPost, "/leads/L1/stage", map[string]string{"etapa": "negociacao"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, usecase.CodeForbiddenTransition, decodeError(t, rec).Error)
}

func TestMoveStageRequiresTarget(t *testing.T) {
	rec := doJSON(t, leadRouter(new(MockCreator), new(MockBoard)), http.MethodPost, "/leads/L1/stage", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoardRejectsUnknownFunnel(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/funnels/vendas/board", nil)
	rec := httptest.NewRecorder()
	leadRouter(new(MockCreator), new(MockBoard)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBoardGroupsColumns(t *testing.T) {
	b := new(MockBoard)
	b.On("Board", mock.Anything, entity.FunnelSDR).Return(kanban.Board{Funnel: entity.FunnelSDR}, nil)

	req := httptest.NewRequest(http.MethodGet, "/funnels/sdr/board", nil)
	rec := httptest.NewRecorder()
	leadRouter(new(MockCreator), b).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	b.AssertExpectations(t)
}

func TestCaptureLeadValidationError(t *testing.T) {
	c := new(MockCreator)
	c.On("Capture", mock.Anything, mock.Anything).Return(nil, &usecase.DomainError{
		Code:    usecase.CodeValidation,
		Message: "validation failed",
		Details: map[string]string{"email": "is required"},
	})

	rec := doJSON(t, leadRouter(c, new(MockBoard)), http.MethodPost, "/public/leads", map[string]string{"nome": "Ana"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is required", decodeError(t, rec).Details["email"])
}

func TestCreateLeadInvalidatesSDRBoard(t *testing.T) {
	c := new(MockCreator)
	c.On("Execute", mock.Anything, testSession, mock.Anything).Return(&entity.Lead{ID: "L1", Funnel: entity.FunnelSDR}, nil)
	b := new(MockBoard)
	b.On("Invalidate", mock.Anything, entity.FunnelSDR).Return()

	rec := doJSON(t, leadRouter(c, b), http.MethodPost, "/leads", map[string]string{"nome": "Ana"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	b.AssertExpectations(t)
}

func TestCaptureLeadInvalidatesCurrentFunnel(t *testing.T) {
	c := new(MockCreator)
	c.On("Capture", mock.Anything, mock.Anything).Return(&entity.Lead{ID: "L1", Funnel: entity.FunnelFrios}, nil)
	b := new(MockBoard)
	b.On("Invalidate", mock.Anything, entity.FunnelFrios).Return()

	rec := doJSON(t, leadRouter(c, b), http.MethodPost, "/public/leads", map[string]string{"nome": "Ana", "email": "a@b.com"})

	assert.Equal(t, http.StatusOK, rec.Code)
	b.AssertExpectations(t)
}

func TestCaptureLeadInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/public/leads", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	leadRouter(new(MockCreator), new(MockBoard)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLeadWithoutSessionIsUnauthorized(t *testing.T) {
	h := NewLeadHandler(new(MockCreator), new(MockBoard), zerolog.Nop())
	rec := doJSON(t, http.HandlerFunc(h.Create), http.MethodPost, "/leads", map[string]string{"nome": "Ana"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateLeadConflict(t *testing.T) {
	c := new(MockCreator)
	c.On("Execute", mock.Anything, testSession, mock.Anything).Return(nil, &usecase.DomainError{Code: usecase.CodeConflict, Message: "lead já existe"})

	rec := doJSON(t, leadRouter(c, new(MockBoard)), http.MethodPost, "/leads", map[string]string{"nome": "Ana", "email": "a@b.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// --- NPS público

func npsRouter(s NPSSurvey) http.Handler {
	h := NewNPSHandler(s, zerolog.Nop())
	r := chi.NewRouter()
	r.Get("/public/nps/{token}", h.Get)
	r.Post("/public/nps/{token}", h.Submit)
	return r
}

func TestNPSSubmitMapsInvitationErrors(t *testing.T) {
	cases := map[string]int{
		usecase.CodeExpired:          http.StatusGone,
		usecase.CodeAlreadyResponded: http.StatusConflict,
		usecase.CodeNotFound:         http.StatusNotFound,
	}
	for code, status := range cases {
		s := new(MockSurvey)
		s.On("Submit", mock.Anything, mock.Anything).Return(nil, &usecase.DomainError{Code: code, Message: code})

		rec := doJSON(t, npsRouter(s), http.MethodPost, "/public/nps/tok", map[string]interface{}{"nota": 9})
		assert.Equal(t, status, rec.Code, code)
	}
}

func TestNPSSubmitPassesTokenFromPath(t *testing.T) {
	s := new(MockSurvey)
	s.On("Submit", mock.Anything, mock.MatchedBy(func(in usecase.SubmitNPSInput) bool {
		return in.Token == "tok" && in.Score != nil && *in.Score == 10 && in.Comment == "ótimo"
	})).Return(&entity.NPSResponse{ID: "R1"}, nil)

	rec := doJSON(t, npsRouter(s), http.MethodPost, "/public/nps/tok", map[string]interface{}{"nota": 10, "comentario": "ótimo", "token": "outro"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	s.AssertExpectations(t)
}

func TestNPSGetHidesToken(t *testing.T) {
	s := new(MockSurvey)
	s.On("Get", mock.Anything, "tok").Return(&entity.NPSInvitation{Token: "tok", ClientName: "Acme"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/public/nps/tok", nil)
	rec := httptest.NewRecorder()
	npsRouter(s).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cliente_nome":"Acme"`)
	assert.NotContains(t, rec.Body.String(), "tok")
}

// --- jobs

func TestJobsReturn200WithResults(t *testing.T) {
	out := &usecase.JobOutput{Success: true, Results: []usecase.JobItemResult{{ID: "T1", UserID: "U1", Status: usecase.ItemNotified}}}
	h := NewJobsHandler(stubJob{out: out}, stubJob{}, stubNPSJob{}, zerolog.Nop())

	rec := doJSON(t, http.HandlerFunc(h.TasksDue), http.MethodPost, "/jobs/tarefas-vencendo", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"resultados"`)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestJobsReturn500OnFailure(t *testing.T) {
	h := NewJobsHandler(stubJob{}, stubJob{err: errors.New("db down")}, stubNPSJob{err: errors.New("db down")}, zerolog.Nop())

	rec := doJSON(t, http.HandlerFunc(h.MeetingReminders), http.MethodPost, "/jobs/lembretes-reuniao", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	rec = doJSON(t, http.HandlerFunc(h.NPS), http.MethodPost, "/jobs/nps", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// --- auth

func TestLoginMapsErrorKinds(t *testing.T) {
	h := NewAuthHandler(stubLogin{err: usecase.ClassifyLoginError(errors.New("Invalid login credentials"))}, zerolog.Nop())
	rec := doJSON(t, http.HandlerFunc(h.Login), http.MethodPost, "/auth/login", map[string]string{"email": "a@b.com", "password": "123456"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tipo":"invalid_credentials"`)
	assert.Contains(t, rec.Body.String(), `"icone":"lock"`)

	h = NewAuthHandler(stubLogin{err: usecase.ClassifyLoginError(context.DeadlineExceeded)}, zerolog.Nop())
	rec = doJSON(t, http.HandlerFunc(h.Login), http.MethodPost, "/auth/login", map[string]string{"email": "a@b.com", "password": "123456"})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestLoginSuccess(t *testing.T) {
	h := NewAuthHandler(stubLogin{tokens: &usecase.AuthTokens{AccessToken: "a", UserID: "U1"}}, zerolog.Nop())
	rec := doJSON(t, http.HandlerFunc(h.Login), http.MethodPost, "/auth/login", map[string]string{"email": "a@b.com", "password": "123456"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"a"`)
}

// --- avatar

func multipartAvatar(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "foto.png")
	require.NoError(t, err)
	fw.Write(data)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(middleware.WithSession(req.Context(), testSession))
}

func TestUploadAvatar(t *testing.T) {
	up := &stubAvatar{url: "https://cdn/avatars/U1/avatar.png"}
	h := NewProfileHandler(up, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, multipartAvatar(t, "avatar", []byte("\x89PNG\r\n\x1a\nxxxx")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "avatar_url")
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nxxxx"), up.got)
}

func TestUploadAvatarMissingField(t *testing.T) {
	h := NewProfileHandler(&stubAvatar{}, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, multipartAvatar(t, "arquivo", []byte("x")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAvatarStorageFailure(t *testing.T) {
	h := NewProfileHandler(&stubAvatar{err: &usecase.TechnicalError{Code: usecase.CodeStorage, Message: "erro ao enviar avatar"}}, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, multipartAvatar(t, "avatar", []byte("x")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, usecase.CodeStorage, decodeError(t, rec).Error)
}

// --- health

type fakeState bool

func (f fakeState) IsClosed() bool { return bool(f) }

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthDegradedWhenDependencyFails(t *testing.T) {
	h := NewHealthHandler(nil, fakeState(true), fakePinger{})
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "not configured", resp.Dependencies["database"])
	assert.Equal(t, "healthy", resp.Dependencies["redis"])
}

func TestHealthyWithoutOptionalDependencies(t *testing.T) {
	var db *sql.DB
	h := NewHealthHandler(db, nil, nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- mapeamento de erros

func TestWriteUseCaseErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&usecase.DomainError{Code: usecase.CodeNotFound}, http.StatusNotFound},
		{&usecase.DomainError{Code: usecase.CodeForbidden}, http.StatusForbidden},
		{&usecase.DomainError{Code: usecase.CodeInvalidTransition}, http.StatusConflict},
		{&usecase.DomainError{Code: "OUTRO"}, http.StatusBadRequest},
		{&usecase.TechnicalError{Code: usecase.CodeDatabase}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeUseCaseError(rec, zerolog.Nop(), tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}
