package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) PasswordLogin(ctx context.Context, email, password string) (*AuthTokens, error) {
	args := m.Called(ctx, email, password)
	tokens, _ := args.Get(0).(*AuthTokens)
	return tokens, args.Error(1)
}

func TestClassifyLoginError(t *testing.T) {
	tests := []struct {
		err  error
		kind LoginErrorKind
	}{
		{errors.New("Invalid login credentials"), LoginInvalidCredentials},
		{errors.New("Email not confirmed"), LoginEmailNotConfirmed},
		{errors.New("429: Too Many Requests"), LoginRateLimited},
		{errors.New("request timeout"), LoginTimeout},
		{context.DeadlineExceeded, LoginTimeout},
		{errors.New("dial tcp: lookup auth.local: no such host"), LoginNetwork},
		{errors.New("boom"), LoginGeneric},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			lerr := ClassifyLoginError(tt.err)
			assert.Equal(t, tt.kind, lerr.Kind)
			assert.NotEmpty(t, lerr.Message)
			assert.NotEmpty(t, lerr.Icon)
			assert.ErrorIs(t, lerr, tt.err)
		})
	}
}

func TestLoginSuccessNormalizesEmail(t *testing.T) {
	provider := new(MockAuthProvider)
	provider.On("PasswordLogin", mock.Anything, "ana@ligue.com", "segredo123").
		Return(&AuthTokens{AccessToken: "tok", UserID: "U1"}, nil)

	uc := NewLoginUseCase(provider, time.Second, zerolog.Nop())
	tokens, err := uc.Execute(context.Background(), LoginInput{Email: "  Ana@Ligue.com ", Password: "segredo123"})

	require.NoError(t, err)
	assert.Equal(t, "tok", tokens.AccessToken)
	provider.AssertExpectations(t)
}

func TestLoginTimesOut(t *testing.T) {
	provider := new(MockAuthProvider)
	provider.On("PasswordLogin", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, errors.New("request canceled"))

	uc := NewLoginUseCase(provider, 20*time.Millisecond, zerolog.Nop())
	_, err := uc.Execute(context.Background(), LoginInput{Email: "ana@ligue.com", Password: "segredo123"})

	var lerr *LoginError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, LoginTimeout, lerr.Kind)
}

func TestLoginValidation(t *testing.T) {
	uc := NewLoginUseCase(new(MockAuthProvider), time.Second, zerolog.Nop())
	_, err := uc.Execute(context.Background(), LoginInput{Email: "não é email", Password: "123"})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Details, "email")
	assert.Contains(t, de.Details, "password")
}
