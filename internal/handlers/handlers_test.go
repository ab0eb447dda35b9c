package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/code-100-precent/LingRx/internal/models"
	"github.com/code-100-precent/LingRx/pkg/logger"
	"github.com/code-100-precent/LingRx/pkg/metrics"
	"github.com/code-100-precent/LingRx/pkg/reactive"
	"github.com/code-100-precent/LingRx/pkg/scheduler"
	"github.com/code-100-precent/LingRx/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Lg = zap.NewNop()
}

var seedTime = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	h        *Handlers
	router   *gin.Engine
	metrics  *metrics.StreamMetrics
	requests *reactive.Emitter[reactive.RequestEvent]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := utils.InitDatabase(io.Discard, "sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, utils.MakeMigrates(db, []any{&models.Reading{}}))
	require.NoError(t, db.Create([]models.Reading{
		{Sensor: "kitchen", Celsius: 21.5, TakenAt: seedTime},
		{Sensor: "garage", Celsius: 12, TakenAt: seedTime.Add(30 * time.Minute)},
		{Sensor: "kitchen", Celsius: 22, TakenAt: seedTime.Add(time.Hour)},
	}).Error)

	loop := scheduler.NewLoop(0)
	t.Cleanup(loop.Close)

	m, err := metrics.NewStreamMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	requests := reactive.NewEmitter[reactive.RequestEvent]()

	h := NewHandlers(db, Options{
		Scheduler:    loop,
		Recorder:     m,
		Requests:     requests,
		TickInterval: 5 * time.Millisecond,
	})
	r := gin.New()
	r.Use(reactive.RequestEvents(requests, reactive.WithScheduler(loop)))
	h.Register(r, "/api")
	return &fixture{h: h, router: r, metrics: m, requests: requests}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// sseData connects to url and sends the payload of every data line on the
// returned channel until ctx is done or the stream ends
func sseData(t *testing.T, ctx context.Context, url string) <-chan string {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if data, ok := strings.CutPrefix(scanner.Text(), "data: "); ok {
				out <- data
			}
		}
	}()
	return out
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream ended early")
		return v
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestListReadings(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/readings", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]models.Reading](t, w)
	require.Len(t, all, 3)
	assert.Equal(t, 22.0, all[0].Celsius)
	assert.Equal(t, "garage", all[1].Sensor)

	kitchen := decode[[]models.Reading](t, f.do(t, http.MethodGet, "/api/readings?sensor=kitchen&min=22", ""))
	require.Len(t, kitchen, 1)
	assert.Equal(t, 22.0, kitchen[0].Celsius)

	none := f.do(t, http.MethodGet, "/api/readings?sensor=attic", "")
	assert.JSONEq(t, `[]`, none.Body.String())

	bad := f.do(t, http.MethodGet, "/api/readings?min=warm", "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Subscriptions.WithLabelValues("readings.list")))
}

func TestCreateReading(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/readings", `{"sensor":"attic","celsius":30.5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[models.Reading](t, w)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "attic", created.Sensor)
	assert.False(t, created.TakenAt.IsZero())

	latest := decode[models.Reading](t, f.do(t, http.MethodGet, "/api/readings/latest/attic", ""))
	assert.Equal(t, created.ID, latest.ID)

	missing := f.do(t, http.MethodPost, "/api/readings", `{"sensor":"attic"}`)
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestLatestReading_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/readings/latest/cellar", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"sensor \"cellar\" has no readings"}`, w.Body.String())
}

func TestSummary(t *testing.T) {
	f := newFixture(t)

	latest := decode[[]models.Reading](t, f.do(t, http.MethodGet, "/api/readings/summary", ""))
	require.Len(t, latest, 2)
	assert.Equal(t, "garage", latest[0].Sensor)
	assert.Equal(t, "kitchen", latest[1].Sensor)
	assert.Equal(t, 22.0, latest[1].Celsius)
}

func TestConvert(t *testing.T) {
	f := newFixture(t)

	got := decode[models.Conversion](t, f.do(t, http.MethodGet, "/api/convert?value=100", ""))
	assert.Equal(t, models.Conversion{Input: 100, From: models.Celsius, Output: 212, To: models.Fahrenheit}, got)

	got = decode[models.Conversion](t, f.do(t, http.MethodGet, "/api/convert?value=32&from=f", ""))
	assert.Equal(t, 0.0, got.Output)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/convert?value=hot", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/convert?value=1&from=K", "").Code)
}

func TestTicks(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/ticks?n=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 4, strings.Count(body, "data: "))
	assert.Contains(t, body, `"seq":2`)
	assert.True(t, strings.HasSuffix(body, "event: close\ndata: {}\n\n"))
}

func TestLiveReadings(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := sseData(t, ctx, srv.URL+"/api/readings/live?sensor=garage")
	require.Eventually(t, func() bool {
		return f.h.created.ListenerCount(eventReadingCreated) == 1
	}, 2*time.Second, 5*time.Millisecond)

	f.do(t, http.MethodPost, "/api/readings", `{"sensor":"kitchen","celsius":23}`)
	f.do(t, http.MethodPost, "/api/readings", `{"sensor":"garage","celsius":13}`)

	var r models.Reading
	require.NoError(t, json.Unmarshal([]byte(receive(t, events)), &r))
	assert.Equal(t, "garage", r.Sensor)
	assert.Equal(t, 13.0, r.Celsius)

	cancel()
	assert.Eventually(t, func() bool {
		return f.h.created.ListenerCount(eventReadingCreated) == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLiveRequests_OnlyErrors(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := sseData(t, ctx, srv.URL+"/api/requests/live?errors=1")
	require.Eventually(t, func() bool {
		return f.requests.ListenerCount(reactive.EventRequest) == 1
	}, 2*time.Second, 5*time.Millisecond)

	f.do(t, http.MethodGet, "/api/readings", "")
	f.do(t, http.MethodGet, "/api/readings/latest/cellar", "")

	var ev reactive.RequestEvent
	require.NoError(t, json.Unmarshal([]byte(receive(t, events)), &ev))
	assert.Equal(t, "/api/readings/latest/:sensor", ev.Path)
	assert.Equal(t, http.StatusNotFound, ev.Status)
}

func TestConvertSocket(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/convert/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, conn.WriteJSON(converterInput{Field: fieldUnit, Value: "kelvin"}))
	require.NoError(t, conn.WriteJSON(converterInput{Field: fieldUnit, Value: "F"}))
	require.NoError(t, conn.WriteJSON(converterInput{Field: fieldTemperature, Value: "212"}))

	var got models.Conversion
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, models.Conversion{Input: 212, From: models.Fahrenheit, Output: 100, To: models.Celsius}, got)

	require.NoError(t, conn.WriteJSON(converterInput{Field: fieldUnit, Value: "C"}))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 413.6, got.Output)
}
