package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Jimmy200504/CalH2O/internal/ml"
	"github.com/Jimmy200504/CalH2O/internal/models"
	"github.com/Jimmy200504/CalH2O/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS configuration of the HTTP routes.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is a client request on the websocket.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already replied to the client.
		zerolog.Ctx(c.Request().Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	clientID := uuid.New().String()
	s.clients.Store(clientID, conn)
	defer s.clients.Delete(clientID)

	logger := zerolog.Ctx(c.Request().Context()).With().Str("client_id", clientID).Logger()
	logger.Info().Msg("websocket client connected")
	defer logger.Info().Msg("websocket client disconnected")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("error reading message")
			}
			return nil
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.sendError(conn, logger, "Invalid message format")
			continue
		}

		ctx := logger.WithContext(context.Background())
		if timeout := s.cfg.RequestTimeout(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			s.handleWebSocketMessage(ctx, conn, msg)
			cancel()
			continue
		}
		s.handleWebSocketMessage(ctx, conn, msg)
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, conn *websocket.Conn, msg wsMessage) {
	logger := *zerolog.Ctx(ctx)

	switch msg.Type {
	case "chat":
		var req models.ChatRequest
		if err := decodeRequest(msg.Data, chatSchema, &req); err != nil {
			s.sendError(conn, logger, err.Error())
			return
		}
		s.sendMessage(conn, logger, "chat_result", s.pipelines.TextToNutrition.Run(ctx, req))

	case "scan":
		var req foodPhotoRequest
		if err := decodeRequest(msg.Data, foodPhotoSchema, &req); err != nil {
			s.sendError(conn, logger, err.Error())
			return
		}
		image, err := ml.DecodeImage(req.Image)
		if err != nil {
			s.sendError(conn, logger, err.Error())
			return
		}
		result, err := s.pipelines.FoodPhoto.Run(ctx, image)
		if err != nil {
			logger.Warn().Err(err).Msg("error processing image")
			if errors.Is(err, pipeline.ErrNoFoodRecognized) {
				s.sendError(conn, logger, err.Error())
				return
			}
			s.sendError(conn, logger, "Failed to process image")
			return
		}
		s.sendMessage(conn, logger, "scan_result", result)

	case "nudge":
		var req models.Status
		if err := decodeRequest(msg.Data, statusSchema, &req); err != nil {
			s.sendError(conn, logger, err.Error())
			return
		}
		out, err := s.pipelines.EmotionalBlackmail.Run(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Msg("error generating messages")
			s.sendError(conn, logger, "Failed to generate messages")
			return
		}
		s.sendMessage(conn, logger, "nudge_result", out)

	default:
		s.sendError(conn, logger, "Unknown message type")
	}
}

func (s *Server) sendMessage(conn *websocket.Conn, logger zerolog.Logger, messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}
	if err := conn.WriteJSON(msg); err != nil {
		logger.Warn().Err(err).Str("type", messageType).Msg("error sending message")
	}
}

func (s *Server) sendError(conn *websocket.Conn, logger zerolog.Logger, message string) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
	}
	if err := conn.WriteJSON(msg); err != nil {
		logger.Warn().Err(err).Msg("error sending error message")
	}
}
