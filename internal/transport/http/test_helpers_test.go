package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/coderoom-server/internal/config"
	"github.com/vovakirdan/coderoom-server/internal/core"
	"github.com/vovakirdan/coderoom-server/internal/execengine"
	"github.com/vovakirdan/coderoom-server/internal/execengine/fake"
	"github.com/vovakirdan/coderoom-server/internal/proto"
	"github.com/vovakirdan/coderoom-server/internal/service/execution"
	"github.com/vovakirdan/coderoom-server/internal/store"
)

type testEnv struct {
	server *httptest.Server
	engine *fake.Engine
	hub    *core.Hub
}

type envOption func(*config.Config, *store.RunStore)

func withRuns(runs store.RunStore) envOption {
	return func(_ *config.Config, rs *store.RunStore) { *rs = runs }
}

func withEventsPerMinute(n int) envOption {
	return func(cfg *config.Config, _ *store.RunStore) { cfg.EventsPerMinute = n }
}

func startTestServer(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	var runs store.RunStore
	for _, opt := range opts {
		opt(&cfg, &runs)
	}

	logger := zerolog.Nop()
	engine := fake.New(
		execengine.Runtime{Language: "python", Version: "3.10.0", Aliases: []string{"py"}},
		execengine.Runtime{Language: "c++", Version: "10.2.0", Aliases: []string{"cpp"}},
	)
	catalog := execution.NewCatalog(engine, 0, 0, &logger)
	svc := execution.New(catalog, engine, time.Second, runs, &logger)

	hub := core.NewHub(core.NewRegistry(), core.NewDirectory(), core.WithRunner(svc), core.WithLogger(&logger))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	ts := httptest.NewServer(NewRouter(hub, svc, runs, cfg, &logger))
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, engine: engine, hub: hub}
}

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func (e *testEnv) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(e.server.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	hello := readEvent(t, ctx, conn, proto.EventHello)
	var data proto.EventHelloData
	decodeData(t, hello, &data)
	if data.Msg == "" {
		t.Fatalf("empty hello: %+v", data)
	}
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil returns the first outbound message accepted by match.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(outbound) bool) outbound {
	t.Helper()

	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read outbound: %v", err)
		}
		if match(out) {
			return out
		}
	}
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, name string) outbound {
	t.Helper()
	return readUntil(t, ctx, conn, func(o outbound) bool {
		return o.Type == proto.OutboundTypeEvent && o.Event == name
	})
}

func readError(t *testing.T, ctx context.Context, conn *websocket.Conn) *proto.Error {
	t.Helper()
	out := readUntil(t, ctx, conn, func(o outbound) bool { return o.Type == proto.OutboundTypeError })
	if out.Error == nil {
		t.Fatalf("error envelope without error body")
	}
	return out.Error
}

func decodeData(t *testing.T, out outbound, v any) {
	t.Helper()
	if err := json.Unmarshal(out.Data, v); err != nil {
		t.Fatalf("unmarshal %s data: %v", out.Event, err)
	}
}
