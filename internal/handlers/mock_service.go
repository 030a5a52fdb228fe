package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dualtherm"
	"dualtherm/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockThermostat struct {
	setModeErr  error
	setTempErr  error
	setPreErr   error
	restoreErr  error
	lastMode    string
	lastParams  service.TemperatureParams
	lastPreset  string
	lastReading string

	setModeCalls int
	setTempCalls int
	setPreCalls  int
}

func (m *mockThermostat) SetMode(ctx context.Context, mode string) error {
	m.setModeCalls++
	m.lastMode = mode
	return m.setModeErr
}
func (m *mockThermostat) SetTemperature(ctx context.Context, p service.TemperatureParams) error {
	m.setTempCalls++
	m.lastParams = p
	return m.setTempErr
}
func (m *mockThermostat) SetPreset(ctx context.Context, preset string) error {
	m.setPreCalls++
	m.lastPreset = preset
	return m.setPreErr
}
func (m *mockThermostat) HandleSensorReading(ctx context.Context, entityID, value string) {
	m.lastReading = entityID + "=" + value
}
func (m *mockThermostat) Restore(ctx context.Context) error {
	return m.restoreErr
}

type mockMonitoring struct {
	state dualtherm.ThermostatState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (dualtherm.ThermostatState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []dualtherm.ThermostatEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]dualtherm.ThermostatEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
