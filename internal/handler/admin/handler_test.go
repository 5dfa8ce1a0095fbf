package admin

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
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/provision"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
)

type fakeProvisioner struct {
	registered *provision.RegisterInput
	rotated    string
	err        error
}

func (f *fakeProvisioner) RegisterHardware(_ context.Context, input provision.RegisterInput) (*model.Hardware, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.registered = &input
	return &model.Hardware{Name: input.Name, Status: model.StatusActive}, nil
}

func (f *fakeProvisioner) RotateKey(_ context.Context, name, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.rotated = name
	return nil
}

func setupRouter(p *fakeProvisioner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(p).RegisterRoutes(r.Group("/admin"))
	return r
}

func request(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterHardware(t *testing.T) {
	p := &fakeProvisioner{}
	r := setupRouter(p)

	w := request(t, r, http.MethodPost, "/admin/hardware", gin.H{
		"nombre":  "Semaforo010",
		"tipo":    "semaforo",
		"empresa": "empresa1",
		"sede":    "principal",
		"api_key": "clave-secreta-010",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, p.registered)
	assert.Equal(t, "Semaforo010", p.registered.Name)
}

func TestRegisterHardwareMissingFieldsIs400(t *testing.T) {
	r := setupRouter(&fakeProvisioner{})

	w := request(t, r, http.MethodPost, "/admin/hardware", gin.H{"nombre": "Semaforo010"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterHardwareDuplicateIs400(t *testing.T) {
	p := &fakeProvisioner{err: apperrors.NewValidation("hardware name already registered", nil)}
	r := setupRouter(p)

	w := request(t, r, http.MethodPost, "/admin/hardware", gin.H{
		"nombre":  "Semaforo010",
		"tipo":    "semaforo",
		"empresa": "empresa1",
		"sede":    "principal",
		"api_key": "clave-secreta-010",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRotateKey(t *testing.T) {
	p := &fakeProvisioner{}
	r := setupRouter(p)

	w := request(t, r, http.MethodPut, "/admin/hardware/Semaforo010/clave", gin.H{
		"api_key": "clave-rotada-010",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Semaforo010", p.rotated)
}

func TestRotateKeyUnknownHardwareIs404(t *testing.T) {
	p := &fakeProvisioner{err: apperrors.NewNotFound("hardware", nil)}
	r := setupRouter(p)

	w := request(t, r, http.MethodPut, "/admin/hardware/NoExiste/clave", gin.H{
		"api_key": "clave-rotada-010",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
