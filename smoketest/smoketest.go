package smoketest

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	qwebsocket "github.com/aukilabs/quadmap/websocket"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	defaultTimeout = 5 * time.Second
)

type Options struct {
	Endpoint   string
	UserAgent  string
	SendResult func(context.Context, Results) error
}

// Request asks for a smoke test of the frame stream served at Endpoint, a
// ws:// or wss:// URL.
type Request struct {
	Endpoint string        `json:"endpoint"`
	Timeout  time.Duration `json:"timeout"`
}

type Results struct {
	FromEndpoint    string  `json:"from_endpoint"`
	ToEndpoint      string  `json:"to_endpoint"`
	Status          string  `json:"status"`
	LatencyMilliSec float64 `json:"latency_ms"`
	Points          int     `json:"points"`
	Error           string  `json:"error,omitempty"`
}

// HandleSmokeTest starts a smoke test in the background and responds right
// away. The result is passed to opts.SendResult.
func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			logs.Warn(errors.New("reading body failed").Wrap(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var req Request
		if err := json.Unmarshal(b, &req); err != nil || req.Endpoint == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		go func() {
			res, err := Run(ctx, opts.Endpoint, opts.UserAgent, req)
			if err != nil {
				logs.WithTag("to_endpoint", req.Endpoint).Warn(err)
			}

			if err := opts.SendResult(ctx, res); err != nil {
				logs.WithTag("from_endpoint", opts.Endpoint).
					WithTag("to_endpoint", req.Endpoint).
					Warn(errors.New("sending smoke test result failed").Wrap(err))
			}
		}()

		w.WriteHeader(http.StatusOK)
	}
}

// Run connects to the frame stream at req.Endpoint and waits for its first
// frame.
func Run(ctx context.Context, from, userAgent string, req Request) (Results, error) {
	res := Results{
		FromEndpoint: from,
		ToEndpoint:   req.Endpoint,
		Status:       StatusFailed,
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	origin := from
	if origin == "" {
		origin = "http://localhost/"
	}

	conf, err := websocket.NewConfig(req.Endpoint, origin)
	if err != nil {
		res.Error = err.Error()
		return res, errors.New("invalid smoke test endpoint").Wrap(err)
	}
	if userAgent != "" {
		conf.Header.Set("User-Agent", userAgent)
	}

	start := time.Now()

	conn, err := conf.DialContext(ctx)
	if err != nil {
		res.Error = err.Error()
		return res, errors.New("connecting to frame stream failed").Wrap(err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	conn.SetReadDeadline(deadline)

	for {
		var data string
		if err := websocket.Message.Receive(conn, &data); err != nil {
			res.Error = err.Error()
			return res, errors.New("receiving frame failed").Wrap(err)
		}

		var msg qwebsocket.Msg
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			res.Error = err.Error()
			return res, errors.New("decoding frame failed").Wrap(err)
		}

		if msg.Type == qwebsocket.MsgTypeFrame {
			res.Status = StatusSuccess
			res.LatencyMilliSec = float64(time.Since(start)) / float64(time.Millisecond)
			res.Points = len(msg.Points)
			return res, nil
		}
	}
}
