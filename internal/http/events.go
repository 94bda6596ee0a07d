package http

import (
	"io"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookar/internal/entities"
	"github.com/mrlokans/bookar/internal/game"
	"github.com/mrlokans/bookar/internal/store"
)

const defaultKeepAlive = 15 * time.Second

// eventBuffer bounds the events queued for one client. Events for a client
// that falls further behind are dropped.
const eventBuffer = 64

type event struct {
	name string
	data any
}

type chapterEvent struct {
	Chapter *entities.Chapter `json:"chapter"`
}

// EventsController streams store changes and error notifications as
// server-sent events.
type EventsController struct {
	game      *game.Game
	keepAlive time.Duration
}

func NewEventsController(g *game.Game, keepAlive time.Duration) *EventsController {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &EventsController{game: g, keepAlive: keepAlive}
}

// Stream handles GET /api/events
//
// Events:
//   - chapter: {"chapter": tree} for the current chapter, sent on connect
//     and on every change
//   - error: an error channel notification
func (ec *EventsController) Stream(c *gin.Context) {
	events := make(chan event, eventBuffer)
	send := func(e event) {
		select {
		case events <- e:
		default:
			log.Printf("Dropping %s event for slow client %s", e.name, c.ClientIP())
		}
	}

	unsubscribeChapter, err := store.SubscribeTo(ec.game.Store, game.PropertyCurrentChapter, func(current, _ *entities.Chapter) {
		send(event{name: "chapter", data: chapterEvent{Chapter: current}})
	})
	if err != nil {
		respondInternalError(c, err, "subscribe to chapter changes")
		return
	}
	defer unsubscribeChapter()

	unsubscribeErrors := ec.game.OnError(func(info entities.ErrorInfo) {
		send(event{name: "error", data: info})
	})
	defer unsubscribeErrors()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send(event{name: "chapter", data: chapterEvent{Chapter: ec.game.State().CurrentChapter}})

	ticker := time.NewTicker(ec.keepAlive)
	defer ticker.Stop()

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case e := <-events:
			c.SSEvent(e.name, e.data)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		}
	})
}
