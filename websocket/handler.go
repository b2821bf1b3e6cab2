package websocket

import (
	"context"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/quadmap/geometry"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	MsgTypeFrame    = "frame"
	MsgTypeViewport = "viewport"

	ErrTypeInvalidMsg = "invalid_msg"

	receiveChanSize = 16
)

// Msg is a JSON message exchanged with a client. The server sends frame
// messages and clients send viewport messages to move the region they watch.
type Msg struct {
	Type   string           `json:"type"`
	Seq    uint64           `json:"seq,omitempty"`
	Region *geometry.Region `json:"region,omitempty"`
	Points []geometry.Point `json:"points,omitempty"`
}

type Sender func(Msg) (int, error)

type Receiver func() (Msg, int, error)

// Handler represents a point map streaming handler.
type Handler interface {
	// Handles a client connection.
	HandleConnect(conn *websocket.Conn) error

	// Registers a function called at each point map frame.
	SubscribeFrames(handleFrame func()) (cancel func())

	// Sends the current state of the client viewport.
	HandleFrame(ctx context.Context, send Sender) error

	// Handles a message sent by the client.
	HandleMsg(ctx context.Context, msg Msg) error

	// Handles a client's disconnection.
	HandleDisconnect(error)

	// Creates a message receiver used to receive incoming messages.
	Receiver() Receiver

	// Creates a message sender used to send frames.
	Sender() Sender

	// Closes the handler and releases its allocated resources.
	Close()

	GetClientID() string
}

// Handle runs h on conn until the client disconnects or ctx is done.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	handler := handler{
		Conn:    conn,
		Handler: h,
	}

	handler.Handle(ctx)
}

type handler struct {
	Conn    *websocket.Conn
	Handler Handler

	sender         Sender
	receiver       Receiver
	receiveChan    chan Msg
	disconnectChan chan error
}

func (h *handler) Handle(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.disconnectChan = make(chan error, 8)
	defer func() {
		for len(h.disconnectChan) != 0 {
			<-h.disconnectChan
		}
	}()

	if err := h.Handler.HandleConnect(h.Conn); err != nil {
		h.handleDisconnect(err)
		return
	}

	frameSignal := make(chan struct{}, 1)
	cancelFrames := h.Handler.SubscribeFrames(func() {
		select {
		case frameSignal <- struct{}{}:
		default:
		}
	})
	defer cancelFrames()

	var wg sync.WaitGroup

	h.sender = h.Handler.Sender()
	h.receiver = h.Handler.Receiver()
	h.receiveChan = make(chan Msg, receiveChanSize)

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startReceiving(ctx)
	}()

	var disconnectErr error

loop:
	for {
		select {
		case <-ctx.Done():
			disconnectErr = ctx.Err()
			break loop

		case <-frameSignal:
			if err := h.Handler.HandleFrame(ctx, h.sender); err != nil {
				h.disconnect(errors.New("sending frame failed").Wrap(err))
			}

		case msg := <-h.receiveChan:
			if err := h.Handler.HandleMsg(ctx, msg); err != nil {
				h.disconnect(errors.New("handling message failed").Wrap(err))
			}

		case err := <-h.disconnectChan:
			disconnectErr = err
			break loop
		}
	}

	// closing the connection unblocks the receiver
	h.handleDisconnect(disconnectErr)
	cancel()
	wg.Wait()
}

func (h *handler) startReceiving(ctx context.Context) {
	for {
		msg, _, err := h.receiver()
		if err != nil {
			h.disconnect(errors.New("receiving message failed").Wrap(err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case h.receiveChan <- msg:
		}
	}
}

func (h *handler) disconnect(err error) {
	select {
	case h.disconnectChan <- err:
	default:
	}
}

func (h *handler) handleDisconnect(err error) {
	h.Conn.Close()
	h.Handler.HandleDisconnect(err)
}

func newSender(conn *websocket.Conn) Sender {
	return func(msg Msg) (int, error) {
		b, err := json.Marshal(msg)
		if err != nil {
			return 0, errors.New("encoding message failed").
				WithType(ErrTypeInvalidMsg).
				WithTag("msg_type", msg.Type).
				Wrap(err)
		}

		if err := websocket.Message.Send(conn, string(b)); err != nil {
			return 0, err
		}
		return len(b), nil
	}
}

func newReceiver(conn *websocket.Conn) Receiver {
	return func() (Msg, int, error) {
		var data string
		if err := websocket.Message.Receive(conn, &data); err != nil {
			return Msg{}, 0, err
		}

		var msg Msg
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			return Msg{}, len(data), errors.New("decoding message failed").
				WithType(ErrTypeInvalidMsg).
				Wrap(err)
		}
		return msg, len(data), nil
	}
}
