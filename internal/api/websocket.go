package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"kilofresh-admin/internal/console"
)

const (
	noticeWriteWait = 10 * time.Second
	noticePingEvery = 30 * time.Second
)

// upgrader configures the websocket upgrade for notice subscribers.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The console is served same-origin; cross-origin clients are the
		// operator's own tooling.
		return true
	},
}

// NoticeStream pushes every published notice to connected console clients,
// so an operator sees mutation results without polling.
type NoticeStream struct {
	notifier *console.Notifier
	log      zerolog.Logger
}

// NewNoticeStream creates the stream handler.
func NewNoticeStream(notifier *console.Notifier, logger zerolog.Logger) *NoticeStream {
	return &NoticeStream{
		notifier: notifier,
		log:      logger.With().Str("component", "notice-stream").Logger(),
	}
}

// Handle upgrades the connection and forwards notices until the client goes
// away.
func (s *NoticeStream) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	notices, unsubscribe := s.notifier.Subscribe()
	defer unsubscribe()

	// Drain client frames so close and ping/pong handling keep working.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(noticePingEvery)
	defer ping.Stop()

	for {
		select {
		case notice := <-notices:
			conn.SetWriteDeadline(time.Now().Add(noticeWriteWait))
			if err := conn.WriteJSON(notice); err != nil {
				s.log.Debug().Err(err).Msg("notice write failed, dropping subscriber")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(noticeWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
