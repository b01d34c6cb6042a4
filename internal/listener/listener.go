package listener

import (
	"context"
	"net/http"

	"pigeon/internal/event"
	"pigeon/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Publisher accepts classified events. *event.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, ev event.Event) error
}

// Listener is the inbound webhook endpoint.
type Listener struct {
	verifier  *Verifier
	publisher Publisher
}

func New(verifier *Verifier, publisher Publisher) *Listener {
	return &Listener{
		verifier:  verifier,
		publisher: publisher,
	}
}

// Engine returns a gin engine that routes every path and method to HandleRequest.
func (l *Listener) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), LimitBody(MaxBodyBytes), logger.GinLogMiddleware())
	engine.Any("/*path", l.HandleRequest)
	return engine
}

// HandleRequest verifies, classifies and publishes one webhook delivery.
// The status is always 200; outcomes are signalled in the body.
func (l *Listener) HandleRequest(c *gin.Context) {
	log := logger.GetLogger()

	// Read request body
	body, err := c.GetRawData()
	if err != nil {
		log.Error("failed to read request body", zap.Error(err))
		c.String(http.StatusOK, BodyInvalidRequest)
		return
	}

	content, err := l.verifier.Verify(c.Request.Header, body)
	if err != nil {
		c.String(http.StatusOK, BodyInvalidRequest)
		return
	}

	result := Classify(content, c.GetHeader("Content-Type"))
	if result.Event != nil {
		// An accepted event is never abandoned because the caller hung up.
		ctx := context.WithoutCancel(c.Request.Context())
		if err := l.publisher.Publish(ctx, result.Event); err != nil {
			log.Error("failed to publish event",
				zap.String("kind", result.Event.Kind()),
				zap.String("delivery_id", result.Event.DeliveryID()),
				zap.Error(err))
			c.String(http.StatusOK, BodyInvalidRequest)
			return
		}
		log.Debug("event published",
			zap.String("kind", result.Event.Kind()),
			zap.String("delivery_id", result.Event.DeliveryID()))
	}

	c.String(http.StatusOK, result.Body)
}
