package client

import (
	"context"
	"net/url"
	"strings"

	"inkwell/internal/session"
	"inkwell/pkg/apperror"

	"github.com/gorilla/websocket"
)

// WatchAuth subscribes to the signed-in user's auth events and calls fn for
// each one until ctx is done or the server closes the stream. Passing
// (*session.Holder).Apply keeps a holder current.
func (c *Client) WatchAuth(ctx context.Context, fn func(session.Event)) error {
	token := c.accessToken(ctx)
	if token == "" {
		return apperror.Unauthenticated("Not signed in")
	}

	u, err := url.Parse(c.baseURL + "/ws/auth")
	if err != nil {
		return err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.RawQuery = url.Values{"token": {token}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return decodeError(resp)
		}
		return err
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var evt session.Event
		if err := conn.ReadJSON(&evt); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		fn(evt)
	}
}
