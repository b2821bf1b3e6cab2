package websocket

import (
	"context"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/quadmap/geometry"
	qhttp "github.com/aukilabs/quadmap/http"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// FrameSource is a point map that emits frames.
type FrameSource interface {
	Region() geometry.Region
	Query(r geometry.Region) []geometry.Point
	HandleFrame(h func()) (cancel func())
}

// FrameStreamer sends, at each frame of Map, the points that lie within the
// client viewport. The initial viewport is read from the x, y, w and h query
// parameters of the connection request and defaults to the whole map.
type FrameStreamer struct {
	Map FrameSource

	conn     *websocket.Conn
	clientID string
	viewport geometry.Region
	seq      uint64
}

func (s *FrameStreamer) HandleConnect(conn *websocket.Conn) error {
	s.conn = conn
	s.clientID = uuid.NewString()
	s.viewport = s.Map.Region()

	if req := conn.Request(); req != nil {
		viewport, err := qhttp.ParseRegion(req.URL.Query(), s.viewport)
		if err != nil {
			return err
		}
		s.viewport = viewport
	}
	return nil
}

func (s *FrameStreamer) SubscribeFrames(handleFrame func()) func() {
	return s.Map.HandleFrame(handleFrame)
}

func (s *FrameStreamer) HandleFrame(ctx context.Context, send Sender) error {
	s.seq++

	_, err := send(Msg{
		Type:   MsgTypeFrame,
		Seq:    s.seq,
		Region: &s.viewport,
		Points: s.Map.Query(s.viewport),
	})
	return err
}

func (s *FrameStreamer) HandleMsg(ctx context.Context, msg Msg) error {
	switch msg.Type {
	case MsgTypeViewport:
		if msg.Region == nil {
			return errors.New("viewport message without region").
				WithType(ErrTypeInvalidMsg)
		}
		s.viewport = *msg.Region
		return nil

	default:
		return errors.New("unsupported message type").
			WithType(ErrTypeInvalidMsg).
			WithTag("msg_type", msg.Type)
	}
}

func (s *FrameStreamer) HandleDisconnect(err error) {
}

func (s *FrameStreamer) Receiver() Receiver {
	return newReceiver(s.conn)
}

func (s *FrameStreamer) Sender() Sender {
	return newSender(s.conn)
}

func (s *FrameStreamer) Close() {
}

func (s *FrameStreamer) GetClientID() string {
	return s.clientID
}

// Viewport returns the region currently streamed to the client.
func (s *FrameStreamer) Viewport() geometry.Region {
	return s.viewport
}
