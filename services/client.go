package services

import (
	"sync"

	"github.com/fundraisely/bingo-server/utils/logger"
	"github.com/gorilla/websocket"
)

// Client wraps one websocket connection with buffered writes and a
// close-once guard.
type Client struct {
	id         string
	conn       *websocket.Conn
	hub        *Hub
	dispatcher *Dispatcher
	send       chan []byte
	once       sync.Once
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// --------------------
// Client read/write pumps
// --------------------
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c.id)
		c.dispatcher.HandleDisconnect(c.id)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[Client %s] disconnected normally", c.id)
			} else {
				logger.Errorf("[Client %s] read error: %v", c.id, err)
			}
			return
		}

		func(msg []byte) {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("[Client %s] recovered from panic: %v", c.id, r)
				}
			}()
			c.dispatcher.HandleMessage(c.id, msg)
		}(message)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Errorf("[Client %s] write error: %v", c.id, err)
			return
		}
	}
}
