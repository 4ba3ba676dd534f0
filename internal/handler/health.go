package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/payload"
)

// HealthHandler reports readiness of the backing stores. It doubles as the
// target of the consul health check.
type HealthHandler struct {
	mongoClient *mongo.Client
	redisClient *redis.Client
	logger      *zerolog.Logger
}

func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, logger *zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		mongoClient: mongoClient,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		h.logger.Error().Err(err).Msg("credential store not ready")
		respondError(w, http.StatusServiceUnavailable, "credential store unavailable")
		return
	}

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.logger.Error().Err(err).Msg("profile mirror not ready")
		respondError(w, http.StatusServiceUnavailable, "profile mirror unavailable")
		return
	}

	writeJSON(w, http.StatusOK, payload.Successful("ok"))
}
