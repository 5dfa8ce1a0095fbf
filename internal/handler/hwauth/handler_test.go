package hwauth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/dispatch"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
)

type fakeAuth struct {
	tokens map[string]string // api key -> token
	names  map[string]string // token -> hardware name
}

func (f *fakeAuth) Authenticate(_ context.Context, hardwareName, apiKey string) (string, error) {
	if token, ok := f.tokens[hardwareName+":"+apiKey]; ok {
		return token, nil
	}
	return "", apperrors.NewUnauthorized("invalid api key", nil)
}

func (f *fakeAuth) ValidateToken(token string) (string, error) {
	if name, ok := f.names[token]; ok {
		return name, nil
	}
	return "", apperrors.NewUnauthorized("invalid token", nil)
}

type fakeDispatcher struct {
	result  *model.DispatchResult
	lastReq *model.AlertRequest
}

func (f *fakeDispatcher) Dispatch(context.Context, []byte) (*model.DispatchResult, error) {
	return f.result, nil
}

func (f *fakeDispatcher) DispatchRequest(_ context.Context, req *model.AlertRequest) (*model.DispatchResult, error) {
	f.lastReq = req
	return f.result, nil
}

func (f *fakeDispatcher) Stats() dispatch.Snapshot { return dispatch.Snapshot{} }

func setupRouter(auth *fakeAuth, dispatcher *fakeDispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(auth, dispatcher).RegisterRoutes(r.Group("/"))
	return r
}

func newAuth() *fakeAuth {
	return &fakeAuth{
		tokens: map[string]string{"Semaforo001:clave-secreta-123": "token-abc"},
		names:  map[string]string{"token-abc": "Semaforo001"},
	}
}

func TestAuthenticateIssuesToken(t *testing.T) {
	r := setupRouter(newAuth(), &fakeDispatcher{})

	payload, _ := json.Marshal(gin.H{"nombre": "Semaforo001", "api_key": "clave-secreta-123"})
	req := httptest.NewRequest(http.MethodPost, "/autenticar-hardware", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "token-abc", body.Data["token"])
}

func TestAuthenticateBadKeyIs401(t *testing.T) {
	r := setupRouter(newAuth(), &fakeDispatcher{})

	payload, _ := json.Marshal(gin.H{"nombre": "Semaforo001", "api_key": "clave-equivocada"})
	req := httptest.NewRequest(http.MethodPost, "/autenticar-hardware", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitAlarmUsesTokenIdentity(t *testing.T) {
	dispatcher := &fakeDispatcher{result: &model.DispatchResult{Authorized: true}}
	r := setupRouter(newAuth(), dispatcher)

	// The body claims another device; the token decides.
	payload, _ := json.Marshal(gin.H{
		"empresa":     "empresa1",
		"tipo_alerta": "semaforo",
		"sede":        "principal",
		"alerta":      "roja",
		"datos":       gin.H{"nombre": "Impostor999"},
	})
	req := httptest.NewRequest(http.MethodPost, "/alarma", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, dispatcher.lastReq)
	assert.Equal(t, "Semaforo001", dispatcher.lastReq.HardwareName)
	assert.Equal(t, "Semaforo001", dispatcher.lastReq.Fields["nombre"])
}

func TestSubmitAlarmMissingTokenIs401(t *testing.T) {
	r := setupRouter(newAuth(), &fakeDispatcher{})

	payload, _ := json.Marshal(gin.H{"empresa": "empresa1", "tipo_alerta": "semaforo", "sede": "principal"})
	req := httptest.NewRequest(http.MethodPost, "/alarma", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitAlarmInvalidTokenIs401(t *testing.T) {
	r := setupRouter(newAuth(), &fakeDispatcher{})

	payload, _ := json.Marshal(gin.H{"empresa": "empresa1", "tipo_alerta": "semaforo", "sede": "principal"})
	req := httptest.NewRequest(http.MethodPost, "/alarma", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-falso")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
