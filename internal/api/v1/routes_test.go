package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/dataset-registrar/internal/endpoint"
	"github.com/stacklok/dataset-registrar/internal/events"
	"github.com/stacklok/dataset-registrar/internal/service"
	"github.com/stacklok/dataset-registrar/internal/service/mocks"
	"github.com/stacklok/dataset-registrar/internal/state"
	"github.com/stacklok/dataset-registrar/internal/status"
)

func serve(t *testing.T, svc service.RegistrarService, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	Router(svc).ServeHTTP(rr, req)
	return rr
}

func TestServerInstanceConnected(t *testing.T) {
	t.Parallel()

	event := events.ServerInstanceConnected{ServerInstanceID: "kie-server-1", ServerTemplateID: "kie"}

	tests := []struct {
		name       string
		body       string
		setupMock  func(*mocks.MockRegistrarService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "accepted",
			body: `{"serverInstanceId":"kie-server-1","serverTemplateId":"kie"}`,
			setupMock: func(m *mocks.MockRegistrarService) {
				m.EXPECT().ServerInstanceConnected(gomock.Any(), event).Return(2, nil)
			},
			wantStatus: http.StatusAccepted,
			wantBody:   `"listeners":2`,
		},
		{
			name: "accepted even when no listener succeeded",
			body: `{"serverInstanceId":"kie-server-1","serverTemplateId":"kie"}`,
			setupMock: func(m *mocks.MockRegistrarService) {
				m.EXPECT().ServerInstanceConnected(gomock.Any(), event).Return(0, nil)
			},
			wantStatus: http.StatusAccepted,
			wantBody:   `"status":"accepted"`,
		},
		{
			name: "missing identifiers",
			body: `{"serverTemplateId":"kie"}`,
			setupMock: func(m *mocks.MockRegistrarService) {
				m.EXPECT().ServerInstanceConnected(gomock.Any(), gomock.Any()).
					Return(0, fmt.Errorf("%w: serverInstanceId is required", events.ErrInvalidEvent))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "serverInstanceId is required",
		},
		{
			name:       "malformed json",
			body:       `{"serverInstanceId":`,
			setupMock:  func(*mocks.MockRegistrarService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid request body",
		},
		{
			name:       "unknown field",
			body:       `{"serverInstanceId":"a","serverTemplateId":"b","extra":true}`,
			setupMock:  func(*mocks.MockRegistrarService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "unknown field",
		},
		{
			name: "service failure",
			body: `{"serverInstanceId":"kie-server-1","serverTemplateId":"kie"}`,
			setupMock: func(m *mocks.MockRegistrarService) {
				m.EXPECT().ServerInstanceConnected(gomock.Any(), event).Return(0, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Failed to handle event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockRegistrarService(ctrl)
			tt.setupMock(svc)

			rr := serve(t, svc, http.MethodPost, "/events/server-instance-connected", tt.body)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
		})
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	runs := []*status.RunStatus{
		{ServerInstanceID: "kie-server-1", ServerTemplateID: "kie", Phase: status.RunPhaseCompleted, Total: 3, Registered: 3},
		{ServerInstanceID: "kie-server-2", ServerTemplateID: "kie", Phase: status.RunPhaseCompleted, Total: 3, Registered: 3},
	}

	t.Run("without filters", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockRegistrarService(ctrl)
		svc.EXPECT().ListRuns(gomock.Any()).Return(runs, nil)

		rr := serve(t, svc, http.MethodGet, "/runs", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var response RunListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, 2, response.Count)
		assert.Equal(t, "kie-server-2", response.Runs[1].ServerInstanceID)
	})

	t.Run("with filters", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockRegistrarService(ctrl)
		svc.EXPECT().ListRuns(gomock.Any(), gomock.Any(), gomock.Any()).Return(runs[:1], nil)

		rr := serve(t, svc, http.MethodGet, "/runs?phase=Completed&serverTemplate=kie", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"count":1`)
	})

	t.Run("invalid filter", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockRegistrarService(ctrl)
		svc.EXPECT().ListRuns(gomock.Any(), gomock.Any()).Return(nil, errors.New("invalid phase: Sleeping"))

		rr := serve(t, svc, http.MethodGet, "/runs?phase=Sleeping", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		setupMock  func(*mocks.MockRegistrarService)
		wantStatus int
	}{
		{
			name: "found",
			path: "/runs/kie-server-1",
			setupMock: func(m *mocks.MockRegistrarService) {
				m.EXPECT().GetRun(gomock.Any(), "kie-server-1").
					Return(&status.RunStatus{ServerInstanceID: "kie-server-1", Phase: status.RunPhaseRegistering}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/runs/kie-server-9",
			setupMock: func(m *mocks.MockRegistrarService) {
				m.EXPECT().GetRun(gomock.Any(), "kie-server-9").Return(nil, fmt.Errorf("%w: kie-server-9", state.ErrRunNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id",
			path:       "/runs/kie%20server",
			setupMock:  func(*mocks.MockRegistrarService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			path: "/runs/kie-server-1",
			setupMock: func(m *mocks.MockRegistrarService) {
				m.EXPECT().GetRun(gomock.Any(), "kie-server-1").Return(nil, errors.New("disk gone"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockRegistrarService(ctrl)
			tt.setupMock(svc)

			rr := serve(t, svc, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestServerTemplates(t *testing.T) {
	t.Parallel()

	kie := service.ServerTemplate{
		ID: "kie",
		Endpoints: []endpoint.EndpointHealth{
			{URL: "http://kie-1:8080", State: endpoint.HealthStateFailed, ConsecutiveFails: 2},
			{URL: "http://kie-2:8080", State: endpoint.HealthStateHealthy},
		},
	}

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockRegistrarService(ctrl)
		svc.EXPECT().ListServerTemplates(gomock.Any()).Return([]service.ServerTemplate{kie}, nil)

		rr := serve(t, svc, http.MethodGet, "/server-templates", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var response ServerTemplateListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.Equal(t, 1, response.Count)
		assert.Equal(t, endpoint.HealthStateFailed, response.ServerTemplates[0].Endpoints[0].State)
	})

	t.Run("get", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockRegistrarService(ctrl)
		svc.EXPECT().GetServerTemplate(gomock.Any(), "kie").Return(&kie, nil)

		rr := serve(t, svc, http.MethodGet, "/server-templates/kie", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"consecutiveFails":2`)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockRegistrarService(ctrl)
		svc.EXPECT().GetServerTemplate(gomock.Any(), "bpm").
			Return(nil, fmt.Errorf("%w: bpm", endpoint.ErrUnknownTemplate))

		rr := serve(t, svc, http.MethodGet, "/server-templates/bpm", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
